package restis

import (
	"strings"

	"github.com/gomodule/redigo/redis"
)

type (
	// ZAddOptions are the flags of ZADD.
	ZAddOptions struct {
		NX   bool
		XX   bool
		GT   bool
		LT   bool
		CH   bool
		Incr bool
	}

	// ZRangeOptions are the optional clauses of the range commands. An
	// offset is only valid together with a count.
	ZRangeOptions struct {
		Rev        bool
		WithScores bool
		Offset     int64
		Count      int64
	}

	// ZAggregateOptions are the optional clauses of ZINTER, ZUNION and
	// their STORE variants. Weights, when given, must match the keys.
	ZAggregateOptions struct {
		Weights    []float64
		Aggregate  string
		WithScores bool
	}

	// ScoreBound is one end of a score range.
	ScoreBound string
)

// Unbounded score range ends.
const (
	NegInf ScoreBound = "-inf"
	PosInf ScoreBound = "+inf"
)

// Score is an inclusive score bound.
func Score(score float64) ScoreBound {
	return ScoreBound(renderFloat(score))
}

// ScoreExclusive is an exclusive score bound.
func ScoreExclusive(score float64) ScoreBound {
	return ScoreBound("(" + renderFloat(score))
}

// ZAdd adds members to the sorted set at key. With Incr, the reply is
// the new score as a float64 (nil when the update was not applied).
func ZAdd(key string, opts ZAddOptions, members ...ScoredMember) Command {
	switch {
	case len(members) == 0:
		return invalidCommand(newValidationError("ZADD", "at least one member is required"))
	case opts.NX && opts.XX:
		return invalidCommand(newValidationError("ZADD", "NX and XX are mutually exclusive"))
	case opts.GT && opts.LT:
		return invalidCommand(newValidationError("ZADD", "GT and LT are mutually exclusive"))
	case opts.NX && (opts.GT || opts.LT):
		return invalidCommand(newValidationError("ZADD", "NX cannot be combined with GT or LT"))
	case opts.Incr && len(members) != 1:
		return invalidCommand(newValidationError("ZADD", "INCR takes exactly one member"))
	}

	args := redis.Args{"ZADD", key}
	args = addFlag(args, "NX", opts.NX)
	args = addFlag(args, "XX", opts.XX)
	args = addFlag(args, "GT", opts.GT)
	args = addFlag(args, "LT", opts.LT)
	args = addFlag(args, "CH", opts.CH)
	args = addFlag(args, "INCR", opts.Incr)

	for _, member := range members {
		args = args.Add(member.Score, member.Member)
	}

	return build(args, replyShape{zaddIncr: opts.Incr})
}

// ZRange returns the members between the start and stop ranks.
func ZRange(key string, start, stop int64, opts ZRangeOptions) Command {
	return zrange("ZRANGE", key, start, stop, opts)
}

// ZRangeByScore returns the members with scores between min and max.
func ZRangeByScore(key string, min, max ScoreBound, opts ZRangeOptions) Command {
	verb := "ZRANGEBYSCORE"
	if opts.Rev {
		verb, min, max = "ZREVRANGEBYSCORE", max, min
	}

	return zrange(verb, key, string(min), string(max), ZRangeOptions{
		WithScores: opts.WithScores,
		Offset:     opts.Offset,
		Count:      opts.Count,
	})
}

// ZRangeByLex returns the members between two lexicographical bounds.
// Bounds start with ( or [, or are - and +.
func ZRangeByLex(key, min, max string, opts ZRangeOptions) Command {
	for _, bound := range []string{min, max} {
		if !validLexBound(bound) {
			return invalidCommand(newValidationError("ZRANGEBYLEX", "invalid lex bound %q", bound))
		}
	}

	if opts.WithScores {
		return invalidCommand(newValidationError("ZRANGEBYLEX", "WITHSCORES is not supported"))
	}

	verb := "ZRANGEBYLEX"
	if opts.Rev {
		verb, min, max = "ZREVRANGEBYLEX", max, min
	}

	return zrange(verb, key, min, max, ZRangeOptions{Offset: opts.Offset, Count: opts.Count})
}

// ZRevRange returns the members between the start and stop ranks, from
// the highest score down.
func ZRevRange(key string, start, stop int64, withScores bool) Command {
	args := addFlag(redis.Args{"ZREVRANGE", key, start, stop}, "WITHSCORES", withScores)
	return build(args, replyShape{withScores: withScores})
}

func zrange(verb, key string, min, max interface{}, opts ZRangeOptions) Command {
	if opts.Offset != 0 && opts.Count == 0 {
		return invalidCommand(newValidationError(verb, "offset requires a count"))
	}

	if opts.Count != 0 && verb == "ZRANGE" {
		return invalidCommand(newValidationError(verb, "LIMIT is only valid for score or lex ranges"))
	}

	args := redis.Args{verb, key, min, max}
	args = addFlag(args, "REV", opts.Rev)

	if opts.Count != 0 {
		args = args.Add("LIMIT", opts.Offset, opts.Count)
	}

	args = addFlag(args, "WITHSCORES", opts.WithScores)
	return build(args, replyShape{withScores: opts.WithScores})
}

func validLexBound(bound string) bool {
	if bound == "-" || bound == "+" {
		return true
	}

	return strings.HasPrefix(bound, "(") || strings.HasPrefix(bound, "[")
}

// ZScan returns a page of the members of the sorted set at key.
func ZScan(key string, cursor uint64, opts ScanOptions) Command {
	return build(opts.append(redis.Args{"ZSCAN", key, cursor}, false), replyShape{})
}

// ZInter returns the intersection of the sorted sets at keys.
func ZInter(keys []string, opts ZAggregateOptions) Command {
	return zaggregate("ZINTER", nil, keys, opts)
}

// ZUnion returns the union of the sorted sets at keys.
func ZUnion(keys []string, opts ZAggregateOptions) Command {
	return zaggregate("ZUNION", nil, keys, opts)
}

// ZInterStore stores the intersection of the sorted sets at keys.
func ZInterStore(destination string, keys []string, opts ZAggregateOptions) Command {
	return zaggregate("ZINTERSTORE", &destination, keys, opts)
}

// ZUnionStore stores the union of the sorted sets at keys.
func ZUnionStore(destination string, keys []string, opts ZAggregateOptions) Command {
	return zaggregate("ZUNIONSTORE", &destination, keys, opts)
}

func zaggregate(verb string, destination *string, keys []string, opts ZAggregateOptions) Command {
	if len(keys) == 0 {
		return invalidCommand(newValidationError(verb, "at least one key is required"))
	}

	if len(opts.Weights) != 0 && len(opts.Weights) != len(keys) {
		return invalidCommand(newValidationError(verb, "expected %d weights, got %d", len(keys), len(opts.Weights)))
	}

	if destination != nil && opts.WithScores {
		return invalidCommand(newValidationError(verb, "WITHSCORES cannot be combined with a destination"))
	}

	args := redis.Args{verb}
	if destination != nil {
		args = args.Add(*destination)
	}

	args = args.Add(len(keys)).Add(toArgs(keys)...)

	if len(opts.Weights) != 0 {
		args = args.Add("WEIGHTS")
		for _, weight := range opts.Weights {
			args = args.Add(weight)
		}
	}

	if opts.Aggregate != "" {
		aggregate := strings.ToUpper(opts.Aggregate)

		switch aggregate {
		case "SUM", "MIN", "MAX":
			args = args.Add("AGGREGATE", aggregate)
		default:
			return invalidCommand(newValidationError(verb, "unknown aggregate %q", opts.Aggregate))
		}
	}

	args = addFlag(args, "WITHSCORES", opts.WithScores)
	return build(args, replyShape{withScores: opts.WithScores})
}

// ZDiff returns the members of the first sorted set absent from the others.
func ZDiff(keys []string, withScores bool) Command {
	if len(keys) == 0 {
		return invalidCommand(newValidationError("ZDIFF", "at least one key is required"))
	}

	args := redis.Args{"ZDIFF", len(keys)}.Add(toArgs(keys)...)
	return build(addFlag(args, "WITHSCORES", withScores), replyShape{withScores: withScores})
}

// ZPopMin removes and returns the members with the lowest scores. A
// count of zero pops a single member.
func ZPopMin(key string, count int64) Command {
	return zpop("ZPOPMIN", key, count)
}

// ZPopMax removes and returns the members with the highest scores.
func ZPopMax(key string, count int64) Command {
	return zpop("ZPOPMAX", key, count)
}

func zpop(verb, key string, count int64) Command {
	args := redis.Args{verb, key}
	if count > 0 {
		args = args.Add(count)
	}

	return build(args, replyShape{withScores: true})
}

// ZRandMember returns random members of the sorted set at key. A count
// of zero returns a single member; scores require a count.
func ZRandMember(key string, count int64, withScores bool) Command {
	if withScores && count == 0 {
		return invalidCommand(newValidationError("ZRANDMEMBER", "WITHSCORES requires a count"))
	}

	args := redis.Args{"ZRANDMEMBER", key}
	if count != 0 {
		args = args.Add(count)
	}

	return build(addFlag(args, "WITHSCORES", withScores), replyShape{withScores: withScores})
}

// ZMScore returns the score of each member as []*float64.
func ZMScore(key string, members ...interface{}) Command {
	return membersCommand("ZMSCORE", key, members)
}

// ZScore returns the score of member as a float64, or nil.
func ZScore(key string, member interface{}) Command {
	return build(redis.Args{"ZSCORE", key, member}, replyShape{})
}

// ZIncrBy increments the score of member.
func ZIncrBy(key string, increment float64, member interface{}) Command {
	return build(redis.Args{"ZINCRBY", key, increment, member}, replyShape{})
}
