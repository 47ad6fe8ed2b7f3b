package restis

import (
	"strings"

	"github.com/gomodule/redigo/redis"
)

// BitFieldBuilder accumulates the sub-commands of a BITFIELD or
// BITFIELD_RO program. The first invalid sub-command is reported by
// the Command it produces.
type BitFieldBuilder struct {
	args     redis.Args
	readOnly bool
	err      error
}

// BitCount counts the set bits of key. Bounds, when given, are a start
// and end byte offset.
func BitCount(key string, bounds ...int64) Command {
	switch len(bounds) {
	case 0:
		return build(redis.Args{"BITCOUNT", key}, replyShape{})
	case 2:
		return build(redis.Args{"BITCOUNT", key, bounds[0], bounds[1]}, replyShape{})
	case 1:
		return invalidCommand(newValidationError("BITCOUNT", "start requires an end"))
	}

	return invalidCommand(newValidationError("BITCOUNT", "expected a start and an end, got %d bounds", len(bounds)))
}

// BitOp stores the result of a bitwise operation over keys in destination.
func BitOp(operation, destination string, keys ...string) Command {
	operation = strings.ToUpper(operation)

	switch operation {
	case "AND", "OR", "XOR":
	case "NOT":
		if len(keys) != 1 {
			return invalidCommand(newValidationError("BITOP", "NOT takes exactly one source key"))
		}
	default:
		return invalidCommand(newValidationError("BITOP", "unknown operation %q", operation))
	}

	if len(keys) == 0 {
		return invalidCommand(newValidationError("BITOP", "at least one source key is required"))
	}

	return build(redis.Args{"BITOP", operation, destination}.Add(toArgs(keys)...), replyShape{})
}

// BitPos returns the position of the first bit set to bit. Bounds are
// an optional start and end byte offset.
func BitPos(key string, bit int, bounds ...int64) Command {
	if bit != 0 && bit != 1 {
		return invalidCommand(newValidationError("BITPOS", "bit must be 0 or 1"))
	}

	if len(bounds) > 2 {
		return invalidCommand(newValidationError("BITPOS", "expected at most a start and an end, got %d bounds", len(bounds)))
	}

	args := redis.Args{"BITPOS", key, bit}
	for _, bound := range bounds {
		args = args.Add(bound)
	}

	return build(args, replyShape{})
}

// BitField starts a read-write bit-field program on key.
func BitField(key string) *BitFieldBuilder {
	return &BitFieldBuilder{args: redis.Args{"BITFIELD", key}}
}

// BitFieldRO starts a read-only bit-field program on key. Only GET
// sub-commands are accepted.
func BitFieldRO(key string) *BitFieldBuilder {
	return &BitFieldBuilder{args: redis.Args{"BITFIELD_RO", key}, readOnly: true}
}

// Get reads the field of the given encoding (e.g. u8, i16) at offset.
func (b *BitFieldBuilder) Get(encoding string, offset interface{}) *BitFieldBuilder {
	b.args = b.args.Add("GET", encoding, offset)
	return b
}

// Set writes value to the field at offset.
func (b *BitFieldBuilder) Set(encoding string, offset interface{}, value int64) *BitFieldBuilder {
	if b.writable("SET") {
		b.args = b.args.Add("SET", encoding, offset, value)
	}

	return b
}

// IncrBy increments the field at offset.
func (b *BitFieldBuilder) IncrBy(encoding string, offset interface{}, increment int64) *BitFieldBuilder {
	if b.writable("INCRBY") {
		b.args = b.args.Add("INCRBY", encoding, offset, increment)
	}

	return b
}

// Overflow sets the overflow behaviour (WRAP, SAT or FAIL) of the
// sub-commands that follow.
func (b *BitFieldBuilder) Overflow(mode string) *BitFieldBuilder {
	if !b.writable("OVERFLOW") {
		return b
	}

	mode = strings.ToUpper(mode)

	switch mode {
	case "WRAP", "SAT", "FAIL":
		b.args = b.args.Add("OVERFLOW", mode)
	default:
		b.fail(newValidationError(b.verb(), "unknown overflow mode %q", mode))
	}

	return b
}

// Command returns the accumulated program.
func (b *BitFieldBuilder) Command() Command {
	if b.err != nil {
		return invalidCommand(b.err)
	}

	return build(b.args, replyShape{})
}

func (b *BitFieldBuilder) writable(subcommand string) bool {
	if b.readOnly {
		b.fail(newValidationError(b.verb(), "%s is not allowed in a read-only program", subcommand))
		return false
	}

	return true
}

func (b *BitFieldBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *BitFieldBuilder) verb() string {
	return b.args[0].(string)
}
