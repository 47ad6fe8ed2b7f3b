package restis

import "github.com/gomodule/redigo/redis"

func SAdd(key string, members ...interface{}) Command {
	return membersCommand("SADD", key, members)
}

func SRem(key string, members ...interface{}) Command {
	return membersCommand("SREM", key, members)
}

func SMembers(key string) Command {
	return build(redis.Args{"SMEMBERS", key}, replyShape{})
}

func SIsMember(key string, member interface{}) Command {
	return build(redis.Args{"SISMEMBER", key, member}, replyShape{})
}

// SMIsMember reports membership of each member as []bool.
func SMIsMember(key string, members ...interface{}) Command {
	return membersCommand("SMISMEMBER", key, members)
}

func SScan(key string, cursor uint64, opts ScanOptions) Command {
	return build(opts.append(redis.Args{"SSCAN", key, cursor}, false), replyShape{})
}

func membersCommand(verb, key string, members []interface{}) Command {
	if len(members) == 0 {
		return invalidCommand(newValidationError(verb, "at least one member is required"))
	}

	return build(redis.Args{verb, key}.Add(members...), replyShape{})
}
