package restis

import "github.com/gomodule/redigo/redis"

func Ping() Command {
	return build(redis.Args{"PING"}, replyShape{})
}

func Echo(message string) Command {
	return build(redis.Args{"ECHO", message}, replyShape{})
}

func DBSize() Command {
	return build(redis.Args{"DBSIZE"}, replyShape{})
}

// FlushAll removes every key of every database.
func FlushAll(async bool) Command {
	return build(addFlag(redis.Args{"FLUSHALL"}, "ASYNC", async), replyShape{})
}

// FlushDB removes every key of the current database.
func FlushDB(async bool) Command {
	return build(addFlag(redis.Args{"FLUSHDB"}, "ASYNC", async), replyShape{})
}

// Time returns the server clock as a TimeResult.
func Time() Command {
	return build(redis.Args{"TIME"}, replyShape{})
}
