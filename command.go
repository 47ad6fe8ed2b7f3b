package restis

import (
	"strconv"
	"strings"

	"github.com/gomodule/redigo/redis"
)

type (
	// Command is an encoded command along with the information needed to
	// format its reply. Commands are values; the opt-out methods return
	// modified copies.
	Command struct {
		args       []string
		family     string
		shape      replyShape
		raw        bool
		noCursor   bool
		keepCursor bool
		err        error
	}

	// replyShape records the reply-altering options requested when the
	// command was encoded.
	replyShape struct {
		withScores bool
		withValues bool
		setGet     bool
		zaddIncr   bool
		geoExtras  []geoExtra
	}
)

// NewCommand creates a command from a verb and its arguments. Known
// commands are checked against the command table; the reply shape is
// derived from the encoded tokens.
func NewCommand(command string, args ...interface{}) Command {
	tokens := toTokens(redis.Args{}.Add(verbTokens(strings.ToUpper(command))...).Add(args...))
	family := familyOf(tokens)
	verbs := strings.Split(family, " ")

	// Subcommands of container verbs are spelled in upper case too.
	if len(verbs) == 2 {
		tokens[1] = verbs[1]
	}

	if spec, ok := commandTable[family]; ok {
		if err := spec.validate(family, len(tokens)-len(verbs)); err != nil {
			return invalidCommand(err)
		}
	}

	return Command{
		args:   tokens,
		family: family,
		shape:  shapeOf(family, tokens),
	}
}

// build assembles a command from builder-collected arguments with an
// explicit reply shape.
func build(args redis.Args, shape replyShape) Command {
	tokens := toTokens(args)

	return Command{
		args:   tokens,
		family: familyOf(tokens),
		shape:  shape,
	}
}

func invalidCommand(err error) Command {
	return Command{err: err}
}

// Args returns the tokens sent to the proxy, verb first.
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// Family returns the name used to select the reply formatter.
func (c Command) Family() string {
	return c.family
}

// Err returns the validation error detected while encoding the command.
func (c Command) Err() error {
	return c.err
}

// Raw returns a copy of the command whose reply is returned without
// family-specific formatting.
func (c Command) Raw() Command {
	c.raw = true
	return c
}

// WithoutCursor returns a copy of a scan command whose formatted reply
// contains only the scanned elements.
func (c Command) WithoutCursor() Command {
	c.noCursor = true
	return c
}

func (c Command) String() string {
	return strings.Join(c.args, " ")
}

// Derive the reply shape of a command built from plain tokens. Only
// flags in the positions the command's grammar gives them are
// considered, so keys, members, and option operands never alter it.
func shapeOf(family string, args []string) replyShape {
	flags := flagsOf(family, args)

	shape := replyShape{
		withScores: containsToken(flags, "WITHSCORES"),
		withValues: containsToken(flags, "WITHVALUES"),
	}

	switch family {
	case "SET":
		shape.setGet = containsToken(flags, "GET")
	case "ZADD":
		shape.zaddIncr = containsToken(flags, "INCR")
	}

	for _, extra := range geoExtras {
		if containsToken(flags, extra.token) {
			shape.geoExtras = append(shape.geoExtras, extra)
		}
	}

	return shape
}

// Operand counts of the option keywords that take arguments.
var optionOperands = map[string]int{
	"AGGREGATE":  1,
	"BYBOX":      3,
	"BYRADIUS":   2,
	"COUNT":      1,
	"EX":         1,
	"EXAT":       1,
	"FROMLONLAT": 2,
	"FROMMEMBER": 1,
	"LIMIT":      2,
	"MATCH":      1,
	"PX":         1,
	"PXAT":       1,
	"STORE":      1,
	"STOREDIST":  1,
	"TYPE":       1,
}

var zaddFlags = map[string]struct{}{
	"NX":   {},
	"XX":   {},
	"GT":   {},
	"LT":   {},
	"CH":   {},
	"INCR": {},
}

// Collect the bare flags of a command, skipping the operands of option
// keywords.
func flagsOf(family string, args []string) []string {
	var from, weights int

	switch family {
	case "ZADD":
		// Flags sit between the key and the first score.
		end := 2
		for end < len(args) {
			if _, ok := zaddFlags[strings.ToUpper(args[end])]; !ok {
				break
			}

			end++
		}

		if end <= 2 {
			return nil
		}

		return args[2:end]

	case "ZINTER", "ZUNION", "ZDIFF":
		if len(args) < 2 {
			return nil
		}

		numKeys, err := strconv.Atoi(args[1])
		if err != nil || numKeys < 0 {
			return nil
		}

		from, weights = 2+numKeys, numKeys

	default:
		spec, ok := commandTable[family]
		if !ok || spec.optionsFrom == 0 {
			return nil
		}

		from = spec.optionsFrom
	}

	var flags []string
	for i := from; i < len(args); i++ {
		token := strings.ToUpper(args[i])

		if token == "WEIGHTS" {
			i += weights
			continue
		}

		if n, ok := optionOperands[token]; ok {
			i += n
			continue
		}

		flags = append(flags, token)
	}

	return flags
}
