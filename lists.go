package restis

import (
	"strings"

	"github.com/gomodule/redigo/redis"
)

// LPosOptions are the optional clauses of LPOS.
type LPosOptions struct {
	Rank   int64
	MaxLen int64
}

func LPush(key string, elements ...interface{}) Command {
	return elementsCommand("LPUSH", key, elements)
}

func RPush(key string, elements ...interface{}) Command {
	return elementsCommand("RPUSH", key, elements)
}

func elementsCommand(verb, key string, elements []interface{}) Command {
	if len(elements) == 0 {
		return invalidCommand(newValidationError(verb, "at least one element is required"))
	}

	return build(redis.Args{verb, key}.Add(elements...), replyShape{})
}

// LPop removes and returns the first elements of the list. A count of
// zero pops a single element.
func LPop(key string, count int64) Command {
	return pop("LPOP", key, count)
}

// RPop removes and returns the last elements of the list.
func RPop(key string, count int64) Command {
	return pop("RPOP", key, count)
}

func pop(verb, key string, count int64) Command {
	args := redis.Args{verb, key}
	if count > 0 {
		args = args.Add(count)
	}

	return build(args, replyShape{})
}

// LPos returns the index of the first matching element.
func LPos(key string, element interface{}, opts LPosOptions) Command {
	return build(opts.append(redis.Args{"LPOS", key, element}), replyShape{})
}

// LPosN returns the indexes of up to count matching elements. A count
// of zero returns every match.
func LPosN(key string, element interface{}, count int64, opts LPosOptions) Command {
	return build(opts.append(redis.Args{"LPOS", key, element}).Add("COUNT", count), replyShape{})
}

func (o LPosOptions) append(args redis.Args) redis.Args {
	if o.Rank != 0 {
		args = args.Add("RANK", o.Rank)
	}

	if o.MaxLen != 0 {
		args = args.Add("MAXLEN", o.MaxLen)
	}

	return args
}

// LInsert inserts element BEFORE or AFTER pivot.
func LInsert(key, where string, pivot, element interface{}) Command {
	where = strings.ToUpper(where)
	if where != "BEFORE" && where != "AFTER" {
		return invalidCommand(newValidationError("LINSERT", "position must be BEFORE or AFTER, got %q", where))
	}

	return build(redis.Args{"LINSERT", key, where, pivot, element}, replyShape{})
}

// LMove pops an element from one end of source and pushes it onto one
// end of destination. Ends are LEFT or RIGHT.
func LMove(source, destination, whereFrom, whereTo string) Command {
	whereFrom, whereTo = strings.ToUpper(whereFrom), strings.ToUpper(whereTo)

	for _, where := range []string{whereFrom, whereTo} {
		if where != "LEFT" && where != "RIGHT" {
			return invalidCommand(newValidationError("LMOVE", "direction must be LEFT or RIGHT, got %q", where))
		}
	}

	return build(redis.Args{"LMOVE", source, destination, whereFrom, whereTo}, replyShape{})
}

func LRange(key string, start, stop int64) Command {
	return build(redis.Args{"LRANGE", key, start, stop}, replyShape{})
}
