package restis

import (
	"encoding/base64"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.Config{
	EscapeHTML: false,
	UseNumber:  true,
}.Froze()

type (
	// reply is a decoded result/error envelope. Exactly one of the
	// two fields is meaningful.
	reply struct {
		value interface{}
		err   error
	}

	number interface {
		Int64() (int64, error)
		String() string
	}
)

func encodeCommand(command Command) ([]byte, error) {
	return json.Marshal(command.args)
}

func encodeBatch(commands []Command) ([]byte, error) {
	args := make([][]string, 0, len(commands))
	for _, command := range commands {
		args = append(args, command.args)
	}

	return json.Marshal(args)
}

// Decode the body of a single-command response. An error envelope is
// returned as a CommandError.
func decodeSingle(body []byte, encoded bool) (reply, error) {
	var envelope interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return reply{}, errors.Wrap(err, "malformed response body")
	}

	return decodeEnvelope(envelope, encoded)
}

// Decode the body of a pipeline or transaction response. The body must
// be an array holding one envelope per queued command.
func decodeBatch(body []byte, n int, encoded bool) ([]reply, error) {
	var envelopes []interface{}
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, errors.Wrap(err, "malformed batch response body")
	}

	if len(envelopes) != n {
		return nil, errors.Errorf("expected %d replies, got %d", n, len(envelopes))
	}

	replies := make([]reply, 0, n)
	for _, envelope := range envelopes {
		r, err := decodeEnvelope(envelope, encoded)
		if err != nil {
			return nil, err
		}

		replies = append(replies, r)
	}

	return replies, nil
}

// Decode an error message from a top-level error envelope, if the body
// holds one.
func decodeError(body []byte) (string, bool) {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}

	message, ok := envelope["error"].(string)
	return message, ok
}

func decodeEnvelope(envelope interface{}, encoded bool) (reply, error) {
	fields, ok := envelope.(map[string]interface{})
	if !ok {
		return reply{}, errors.Errorf("expected a result envelope, got %T", envelope)
	}

	if message, ok := fields["error"]; ok {
		text, ok := message.(string)
		if !ok {
			return reply{}, errors.Errorf("expected an error message, got %T", message)
		}

		return reply{err: &CommandError{Message: text}}, nil
	}

	result, ok := fields["result"]
	if !ok {
		return reply{}, errors.New("envelope holds neither a result nor an error")
	}

	value, err := decodeValue(result, encoded)
	if err != nil {
		return reply{}, err
	}

	return reply{value: value}, nil
}

// Convert a decoded JSON value into a raw reply. Strings become byte
// slices, base64-decoded when the response is encoded. The status reply
// OK is never encoded by the proxy.
func decodeValue(value interface{}, encoded bool) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case string:
		if !encoded || v == "OK" {
			return []byte(v), nil
		}

		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed base64 value %q", v)
		}

		return decoded, nil

	case number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}

		return []byte(v.String()), nil

	case bool:
		if v {
			return int64(1), nil
		}

		return int64(0), nil

	case []interface{}:
		values := make([]interface{}, 0, len(v))
		for _, elem := range v {
			decoded, err := decodeValue(elem, encoded)
			if err != nil {
				return nil, err
			}

			values = append(values, decoded)
		}

		return values, nil
	}

	return nil, errors.Errorf("unexpected value of type %T", value)
}
