package restis

// commandSpec describes the argument shape and reply formatter of a
// command family. Argument counts exclude the verb tokens; optionsFrom
// is the token index (verb included) at which optional clauses begin.
type commandSpec struct {
	minArgs     int
	maxArgs     int
	pairsFrom   int
	optionsFrom int
	format      formatFunc
}

const (
	many    = -1
	noPairs = -1
)

func (s commandSpec) validate(family string, n int) error {
	if n < s.minArgs {
		return newValidationError(family, "expected at least %d arguments, got %d", s.minArgs, n)
	}

	if s.maxArgs != many && n > s.maxArgs {
		return newValidationError(family, "expected at most %d arguments, got %d", s.maxArgs, n)
	}

	if s.pairsFrom != noPairs && (n-s.pairsFrom)%2 != 0 {
		return newValidationError(family, "arguments after position %d must come in pairs", s.pairsFrom)
	}

	return nil
}

func arity(min, max int) commandSpec {
	return commandSpec{minArgs: min, maxArgs: max, pairsFrom: noPairs}
}

func (s commandSpec) pairs(from int) commandSpec {
	s.pairsFrom = from
	return s
}

func (s commandSpec) options(from int) commandSpec {
	s.optionsFrom = from
	return s
}

func (s commandSpec) formatted(f formatFunc) commandSpec {
	s.format = f
	return s
}

// commandTable is the single source of argument-shape and reply-format
// rules for the command families understood by the client. Families
// absent from this table are sent unchecked and returned unformatted.
var commandTable = map[string]commandSpec{
	// generic
	"COPY":      arity(2, 5).options(3).formatted(formatBool),
	"DEL":       arity(1, many),
	"EXISTS":    arity(1, many),
	"EXPIRE":    arity(2, 3).formatted(formatBool),
	"EXPIREAT":  arity(2, 3).formatted(formatBool),
	"KEYS":      arity(1, 1),
	"PERSIST":   arity(1, 1).formatted(formatBool),
	"PEXPIRE":   arity(2, 3).formatted(formatBool),
	"PEXPIREAT": arity(2, 3).formatted(formatBool),
	"PTTL":      arity(1, 1),
	"RANDOMKEY": arity(0, 0),
	"RENAME":    arity(2, 2).formatted(formatOK),
	"RENAMENX":  arity(2, 2).formatted(formatBool),
	"SCAN":      arity(1, many).options(2).formatted(formatScan),
	"TOUCH":     arity(1, many),
	"TTL":       arity(1, 1),
	"TYPE":      arity(1, 1),
	"UNLINK":    arity(1, many),

	// strings
	"APPEND":      arity(2, 2),
	"DECR":        arity(1, 1),
	"DECRBY":      arity(2, 2),
	"GET":         arity(1, 1),
	"GETDEL":      arity(1, 1),
	"GETEX":       arity(1, 3),
	"GETRANGE":    arity(3, 3),
	"GETSET":      arity(2, 2),
	"INCR":        arity(1, 1),
	"INCRBY":      arity(2, 2),
	"INCRBYFLOAT": arity(2, 2).formatted(formatFloat),
	"MGET":        arity(1, many),
	"MSET":        arity(2, many).pairs(0).formatted(formatOK),
	"MSETNX":      arity(2, many).pairs(0).formatted(formatBool),
	"PSETEX":      arity(3, 3).formatted(formatOK),
	"SET":         arity(2, many).options(3).formatted(formatSet),
	"SETEX":       arity(3, 3).formatted(formatOK),
	"SETNX":       arity(2, 2).formatted(formatBool),
	"SETRANGE":    arity(3, 3),
	"STRLEN":      arity(1, 1),
	"SUBSTR":      arity(3, 3),

	// bitmaps
	"BITCOUNT":    arity(1, 4),
	"BITFIELD":    arity(1, many),
	"BITFIELD_RO": arity(1, many),
	"BITOP":       arity(3, many),
	"BITPOS":      arity(2, 5),
	"GETBIT":      arity(2, 2),
	"SETBIT":      arity(3, 3),

	// hashes
	"HDEL":         arity(2, many),
	"HEXISTS":      arity(2, 2).formatted(formatBool),
	"HGET":         arity(2, 2),
	"HGETALL":      arity(1, 1).formatted(formatPairs),
	"HINCRBY":      arity(3, 3),
	"HINCRBYFLOAT": arity(3, 3).formatted(formatFloat),
	"HKEYS":        arity(1, 1),
	"HLEN":         arity(1, 1),
	"HMGET":        arity(2, many),
	"HMSET":        arity(3, many).pairs(1).formatted(formatOK),
	"HRANDFIELD":   arity(1, 3).options(3).formatted(formatHRandField),
	"HSCAN":        arity(2, many).options(3).formatted(formatHashScan),
	"HSET":         arity(3, many).pairs(1),
	"HSETNX":       arity(3, 3).formatted(formatBool),
	"HSTRLEN":      arity(2, 2),
	"HVALS":        arity(1, 1),

	// hyperloglog
	"PFADD":   arity(1, many).formatted(formatBool),
	"PFCOUNT": arity(1, many),
	"PFMERGE": arity(1, many).formatted(formatOK),

	// lists
	"LINDEX":    arity(2, 2),
	"LINSERT":   arity(4, 4),
	"LLEN":      arity(1, 1),
	"LMOVE":     arity(4, 4),
	"LPOP":      arity(1, 2),
	"LPOS":      arity(2, many),
	"LPUSH":     arity(2, many),
	"LPUSHX":    arity(2, many),
	"LRANGE":    arity(3, 3),
	"LREM":      arity(3, 3),
	"LSET":      arity(3, 3).formatted(formatOK),
	"LTRIM":     arity(3, 3),
	"RPOP":      arity(1, 2),
	"RPOPLPUSH": arity(2, 2),
	"RPUSH":     arity(2, many),
	"RPUSHX":    arity(2, many),

	// pub/sub
	"PUBLISH":         arity(2, 2),
	"PUBSUB CHANNELS": arity(0, 1),
	"PUBSUB NUMPAT":   arity(0, 0),
	"PUBSUB NUMSUB":   arity(0, many).formatted(formatNumSub),

	// scripting
	"EVAL":          arity(2, many),
	"EVAL_RO":       arity(2, many),
	"EVALSHA":       arity(2, many),
	"EVALSHA_RO":    arity(2, many),
	"SCRIPT EXISTS": arity(1, many).formatted(formatBoolList),
	"SCRIPT FLUSH":  arity(0, 1).formatted(formatOK),
	"SCRIPT LOAD":   arity(1, 1),

	// server and connection
	"DBSIZE":   arity(0, 0),
	"ECHO":     arity(1, 1),
	"FLUSHALL": arity(0, 1).formatted(formatOK),
	"FLUSHDB":  arity(0, 1).formatted(formatOK),
	"PING":     arity(0, 1),
	"TIME":     arity(0, 0).formatted(formatTime),

	// sets
	"SADD":        arity(2, many),
	"SCARD":       arity(1, 1),
	"SDIFF":       arity(1, many),
	"SDIFFSTORE":  arity(2, many),
	"SINTER":      arity(1, many),
	"SINTERSTORE": arity(2, many),
	"SISMEMBER":   arity(2, 2).formatted(formatBool),
	"SMEMBERS":    arity(1, 1),
	"SMISMEMBER":  arity(2, many).formatted(formatBoolList),
	"SMOVE":       arity(3, 3).formatted(formatBool),
	"SPOP":        arity(1, 2),
	"SRANDMEMBER": arity(1, 2),
	"SREM":        arity(2, many),
	"SSCAN":       arity(2, many).options(3).formatted(formatScan),
	"SUNION":      arity(1, many),
	"SUNIONSTORE": arity(2, many),

	// sorted sets
	"ZADD":             arity(3, many).options(2).formatted(formatZAdd),
	"ZCARD":            arity(1, 1),
	"ZCOUNT":           arity(3, 3),
	"ZDIFF":            arity(2, many).options(2).formatted(formatScoredIfRequested),
	"ZDIFFSTORE":       arity(3, many),
	"ZINCRBY":          arity(3, 3).formatted(formatFloat),
	"ZINTER":           arity(2, many).options(2).formatted(formatScoredIfRequested),
	"ZINTERSTORE":      arity(3, many),
	"ZLEXCOUNT":        arity(3, 3),
	"ZMSCORE":          arity(2, many).formatted(formatOptionalFloatList),
	"ZPOPMAX":          arity(1, 2).formatted(formatScored),
	"ZPOPMIN":          arity(1, 2).formatted(formatScored),
	"ZRANDMEMBER":      arity(1, 3).options(3).formatted(formatScoredIfRequested),
	"ZRANGE":           arity(3, many).options(4).formatted(formatScoredIfRequested),
	"ZRANGEBYLEX":      arity(3, 6),
	"ZRANGEBYSCORE":    arity(3, many).options(4).formatted(formatScoredIfRequested),
	"ZRANGESTORE":      arity(4, many),
	"ZRANK":            arity(2, 2),
	"ZREM":             arity(2, many),
	"ZREMRANGEBYLEX":   arity(3, 3),
	"ZREMRANGEBYRANK":  arity(3, 3),
	"ZREMRANGEBYSCORE": arity(3, 3),
	"ZREVRANGE":        arity(3, 4).options(4).formatted(formatScoredIfRequested),
	"ZREVRANGEBYLEX":   arity(3, 6),
	"ZREVRANGEBYSCORE": arity(3, many).options(4).formatted(formatScoredIfRequested),
	"ZREVRANK":         arity(2, 2),
	"ZSCAN":            arity(2, many).options(3).formatted(formatZSetScan),
	"ZSCORE":           arity(2, 2).formatted(formatOptionalFloat),
	"ZUNION":           arity(2, many).options(2).formatted(formatScoredIfRequested),
	"ZUNIONSTORE":      arity(3, many),

	// geo
	"GEOADD":               arity(4, many),
	"GEODIST":              arity(3, 4).formatted(formatOptionalFloat),
	"GEOHASH":              arity(1, many),
	"GEOPOS":               arity(1, many).formatted(formatGeoPositions),
	"GEORADIUS":            arity(5, many).options(6).formatted(formatGeoMembers),
	"GEORADIUS_RO":         arity(5, many).options(6).formatted(formatGeoMembers),
	"GEORADIUSBYMEMBER":    arity(4, many).options(5).formatted(formatGeoMembers),
	"GEORADIUSBYMEMBER_RO": arity(4, many).options(5).formatted(formatGeoMembers),
	"GEOSEARCH":            arity(4, many).options(2).formatted(formatGeoMembers),
	"GEOSEARCHSTORE":       arity(5, many),
}
