package restis

import "github.com/gomodule/redigo/redis"

type (
	// SetOptions are the flags of SET. At most one expiry may be given.
	SetOptions struct {
		NX      bool
		XX      bool
		Get     bool
		EX      int64
		PX      int64
		EXAT    int64
		PXAT    int64
		KeepTTL bool
	}

	// GetExOptions are the expiry options of GETEX. At most one may be
	// given; none leaves the expiry untouched.
	GetExOptions struct {
		EX      int64
		PX      int64
		EXAT    int64
		PXAT    int64
		Persist bool
	}

	// KeyValue is a single key assignment of MSET and MSETNX.
	KeyValue struct {
		Key   string
		Value interface{}
	}
)

// Set assigns value to key. The reply is a bool unless Get was
// requested, in which case it is the previous value.
func Set(key string, value interface{}, opts SetOptions) Command {
	if opts.NX && opts.XX {
		return invalidCommand(newValidationError("SET", "NX and XX are mutually exclusive"))
	}

	if opts.NX && opts.Get {
		return invalidCommand(newValidationError("SET", "NX and GET are mutually exclusive"))
	}

	if countSet(opts.EX != 0, opts.PX != 0, opts.EXAT != 0, opts.PXAT != 0, opts.KeepTTL) > 1 {
		return invalidCommand(newValidationError("SET", "only one of EX, PX, EXAT, PXAT and KEEPTTL may be given"))
	}

	args := redis.Args{"SET", key, value}
	args = addFlag(args, "NX", opts.NX)
	args = addFlag(args, "XX", opts.XX)
	args = addFlag(args, "GET", opts.Get)
	args = addExpiry(args, opts.EX, opts.PX, opts.EXAT, opts.PXAT)
	args = addFlag(args, "KEEPTTL", opts.KeepTTL)

	return build(args, replyShape{setGet: opts.Get})
}

// Get returns the value of key.
func Get(key string) Command {
	return build(redis.Args{"GET", key}, replyShape{})
}

// GetEx returns the value of key and optionally changes its expiry.
func GetEx(key string, opts GetExOptions) Command {
	if countSet(opts.EX != 0, opts.PX != 0, opts.EXAT != 0, opts.PXAT != 0, opts.Persist) > 1 {
		return invalidCommand(newValidationError("GETEX", "only one of EX, PX, EXAT, PXAT and PERSIST may be given"))
	}

	args := addExpiry(redis.Args{"GETEX", key}, opts.EX, opts.PX, opts.EXAT, opts.PXAT)
	return build(addFlag(args, "PERSIST", opts.Persist), replyShape{})
}

// Incr increments the integer at key by one.
func Incr(key string) Command {
	return build(redis.Args{"INCR", key}, replyShape{})
}

// IncrBy increments the integer at key by increment.
func IncrBy(key string, increment int64) Command {
	return build(redis.Args{"INCRBY", key, increment}, replyShape{})
}

// IncrByFloat increments the number at key by increment. The reply is
// a float64.
func IncrByFloat(key string, increment float64) Command {
	return build(redis.Args{"INCRBYFLOAT", key, increment}, replyShape{})
}

// MGet returns the values of all given keys.
func MGet(keys ...string) Command {
	return keysCommand("MGET", keys)
}

// MSet assigns every value in order.
func MSet(values ...KeyValue) Command {
	return multiSet("MSET", values)
}

// MSetNX assigns every value only if none of the keys exist.
func MSetNX(values ...KeyValue) Command {
	return multiSet("MSETNX", values)
}

func multiSet(verb string, values []KeyValue) Command {
	if len(values) == 0 {
		return invalidCommand(newValidationError(verb, "at least one key/value pair is required"))
	}

	args := redis.Args{verb}
	for _, kv := range values {
		args = args.Add(kv.Key, kv.Value)
	}

	return build(args, replyShape{})
}

func addFlag(args redis.Args, flag string, set bool) redis.Args {
	if set {
		return args.Add(flag)
	}

	return args
}

func addExpiry(args redis.Args, ex, px, exat, pxat int64) redis.Args {
	switch {
	case ex != 0:
		return args.Add("EX", ex)
	case px != 0:
		return args.Add("PX", px)
	case exat != 0:
		return args.Add("EXAT", exat)
	case pxat != 0:
		return args.Add("PXAT", pxat)
	}

	return args
}

func countSet(flags ...bool) int {
	n := 0
	for _, flag := range flags {
		if flag {
			n++
		}
	}

	return n
}
