package restis

import "github.com/gomodule/redigo/redis"

// HSet assigns the given fields of the hash at key.
func HSet(key string, fields ...FieldValue) Command {
	return hashSet("HSET", key, fields)
}

// HMSet assigns the given fields of the hash at key. The reply is a bool.
func HMSet(key string, fields ...FieldValue) Command {
	return hashSet("HMSET", key, fields)
}

func hashSet(verb, key string, fields []FieldValue) Command {
	if len(fields) == 0 {
		return invalidCommand(newValidationError(verb, "at least one field is required"))
	}

	args := redis.Args{verb, key}
	for _, field := range fields {
		args = args.Add(field.Field, field.Value)
	}

	return build(args, replyShape{})
}

// HSetStruct assigns the exported fields of a struct to the hash at key.
// Field names follow the `redis` struct tag.
func HSetStruct(key string, v interface{}) Command {
	args := redis.Args{"HSET", key}.AddFlat(v)
	if len(args) == 2 {
		return invalidCommand(newValidationError("HSET", "value has no fields to assign"))
	}

	return build(args, replyShape{})
}

// HGetAll returns every field of the hash at key as []FieldValue.
func HGetAll(key string) Command {
	return build(redis.Args{"HGETALL", key}, replyShape{})
}

// HDel removes the given fields of the hash at key.
func HDel(key string, fields ...string) Command {
	if len(fields) == 0 {
		return invalidCommand(newValidationError("HDEL", "at least one field is required"))
	}

	return build(redis.Args{"HDEL", key}.Add(toArgs(fields)...), replyShape{})
}

// HScan returns a page of the fields of the hash at key.
func HScan(key string, cursor uint64, opts ScanOptions) Command {
	return build(opts.append(redis.Args{"HSCAN", key, cursor}, false), replyShape{})
}

// HRandField returns a random field name of the hash at key.
func HRandField(key string) Command {
	return build(redis.Args{"HRANDFIELD", key}, replyShape{})
}

// HRandFieldN returns up to count random fields, with their values as
// []FieldValue when withValues is set.
func HRandFieldN(key string, count int64, withValues bool) Command {
	args := addFlag(redis.Args{"HRANDFIELD", key, count}, "WITHVALUES", withValues)
	return build(args, replyShape{withValues: withValues})
}
