package restis

import "github.com/gomodule/redigo/redis"

type (
	// ScanOptions are the optional clauses shared by the SCAN family.
	ScanOptions struct {
		Match string
		Count int64
		Type  string
	}

	// ExpireCondition restricts when an expiry is applied. The zero
	// value applies it unconditionally.
	ExpireCondition string
)

// Conditions accepted by Expire.
const (
	ExpireAlways     ExpireCondition = ""
	ExpireIfNone     ExpireCondition = "NX"
	ExpireIfExists   ExpireCondition = "XX"
	ExpireIfGreater  ExpireCondition = "GT"
	ExpireIfLessThan ExpireCondition = "LT"
)

// Scan returns a page of keys starting at the given cursor.
func Scan(cursor uint64, opts ScanOptions) Command {
	return build(opts.append(redis.Args{"SCAN", cursor}, true), replyShape{})
}

func (o ScanOptions) append(args redis.Args, withType bool) redis.Args {
	if o.Match != "" {
		args = args.Add("MATCH", o.Match)
	}

	if o.Count > 0 {
		args = args.Add("COUNT", o.Count)
	}

	if withType && o.Type != "" {
		args = args.Add("TYPE", o.Type)
	}

	return args
}

// Copy copies the value at source to destination, replacing the
// destination only when replace is set.
func Copy(source, destination string, replace bool) Command {
	args := redis.Args{"COPY", source, destination}
	if replace {
		args = args.Add("REPLACE")
	}

	return build(args, replyShape{})
}

// Del removes the given keys.
func Del(keys ...string) Command {
	return keysCommand("DEL", keys)
}

// Exists counts how many of the given keys exist.
func Exists(keys ...string) Command {
	return keysCommand("EXISTS", keys)
}

// Touch updates the last access time of the given keys.
func Touch(keys ...string) Command {
	return keysCommand("TOUCH", keys)
}

// Unlink removes the given keys asynchronously.
func Unlink(keys ...string) Command {
	return keysCommand("UNLINK", keys)
}

func keysCommand(verb string, keys []string) Command {
	if len(keys) == 0 {
		return invalidCommand(newValidationError(verb, "at least one key is required"))
	}

	return build(redis.Args{verb}.Add(toArgs(keys)...), replyShape{})
}

// Expire sets a timeout of the given number of seconds on a key.
func Expire(key string, seconds int64, condition ExpireCondition) Command {
	args := redis.Args{"EXPIRE", key, seconds}

	switch condition {
	case ExpireAlways:
	case ExpireIfNone, ExpireIfExists, ExpireIfGreater, ExpireIfLessThan:
		args = args.Add(string(condition))
	default:
		return invalidCommand(newValidationError("EXPIRE", "unknown condition %q", condition))
	}

	return build(args, replyShape{})
}

// Keys lists the keys matching pattern.
func Keys(pattern string) Command {
	return build(redis.Args{"KEYS", pattern}, replyShape{})
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, 0, len(values))
	for _, value := range values {
		args = append(args, value)
	}

	return args
}
