package restis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gomodule/redigo/redis"
)

// Render every argument as the string token the proxy expects. Numbers
// are written in their shortest exact form and infinities use the
// store's own spelling. Anything without a natural string form is
// written as JSON.
func toTokens(args redis.Args) []string {
	tokens := make([]string, 0, len(args))
	for _, arg := range args {
		tokens = append(tokens, toToken(arg))
	}

	return tokens
}

func toToken(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return renderFloat(float64(v))
	case float64:
		return renderFloat(v)
	case bool:
		if v {
			return "1"
		}

		return "0"
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	}

	encoded, err := json.MarshalToString(arg)
	if err != nil {
		return fmt.Sprint(arg)
	}

	return encoded
}

func renderFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Determine the formatter family of an encoded command. Container
// commands are keyed by their verb and subcommand.
func familyOf(args []string) string {
	if len(args) == 0 {
		return ""
	}

	verb := strings.ToUpper(args[0])
	if _, ok := containerVerbs[verb]; ok && len(args) > 1 {
		return verb + " " + strings.ToUpper(args[1])
	}

	return verb
}

var containerVerbs = map[string]struct{}{
	"SCRIPT": {},
	"PUBSUB": {},
	"CLIENT": {},
	"CONFIG": {},
}

// Split a family into the tokens that spell it on the wire.
func verbTokens(family string) []interface{} {
	parts := strings.Split(family, " ")
	tokens := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, part)
	}

	return tokens
}

func containsToken(args []string, token string) bool {
	for _, arg := range args {
		if strings.EqualFold(arg, token) {
			return true
		}
	}

	return false
}
