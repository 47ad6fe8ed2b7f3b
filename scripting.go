package restis

import (
	"strings"

	"github.com/gomodule/redigo/redis"
)

// Eval runs a Lua script with the given keys and arguments.
func Eval(script string, keys []string, args ...interface{}) Command {
	return eval("EVAL", script, keys, args)
}

// EvalRO runs a read-only Lua script.
func EvalRO(script string, keys []string, args ...interface{}) Command {
	return eval("EVAL_RO", script, keys, args)
}

// EvalSHA runs a cached script by its SHA1 digest.
func EvalSHA(sha string, keys []string, args ...interface{}) Command {
	return eval("EVALSHA", sha, keys, args)
}

// EvalSHARO runs a cached read-only script by its SHA1 digest.
func EvalSHARO(sha string, keys []string, args ...interface{}) Command {
	return eval("EVALSHA_RO", sha, keys, args)
}

func eval(verb, script string, keys []string, args []interface{}) Command {
	return build(redis.Args{verb, script, len(keys)}.Add(toArgs(keys)...).Add(args...), replyShape{})
}

// ScriptLoad caches a script and returns its digest.
func ScriptLoad(script string) Command {
	return build(redis.Args{"SCRIPT", "LOAD", script}, replyShape{})
}

// ScriptExists reports whether each digest is cached as []bool.
func ScriptExists(shas ...string) Command {
	if len(shas) == 0 {
		return invalidCommand(newValidationError("SCRIPT EXISTS", "at least one digest is required"))
	}

	return build(redis.Args{"SCRIPT", "EXISTS"}.Add(toArgs(shas)...), replyShape{})
}

// ScriptFlush empties the script cache. Mode is ASYNC, SYNC, or empty
// for the server default.
func ScriptFlush(mode string) Command {
	args := redis.Args{"SCRIPT", "FLUSH"}

	switch m := strings.ToUpper(mode); m {
	case "":
	case "ASYNC", "SYNC":
		args = args.Add(m)
	default:
		return invalidCommand(newValidationError("SCRIPT FLUSH", "mode must be ASYNC or SYNC, got %q", mode))
	}

	return build(args, replyShape{})
}
