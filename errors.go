package restis

import (
	"fmt"

	"github.com/pkg/errors"
)

type (
	// ValidationError is returned when a command's arguments are rejected
	// locally. No request is sent for a command carrying this error.
	ValidationError struct {
		Command string
		Reason  string
	}

	// TransportError is returned when the proxy could not be reached or
	// returned a response that could not be understood. It is the only
	// error kind that is retried.
	TransportError struct {
		StatusCode int
		Body       []byte
		Err        error
	}

	// CommandError is returned when the proxy executed the request and
	// reported that the command itself failed. Message is the proxy's
	// message, verbatim.
	CommandError struct {
		Message string
	}

	// FormattingError is returned when a reply does not have the shape
	// expected for its command family.
	FormattingError struct {
		Family string
		Reason string
	}

	// BatchAbortedError is returned when a transaction was rejected as
	// a whole. No per-command results are available.
	BatchAbortedError struct {
		Message string
	}
)

var (
	// ErrBatchExhausted is returned when a pipeline or transaction is
	// used after it has been executed.
	ErrBatchExhausted = errors.New("batch has already been executed")

	// ErrMissingURL is returned when no proxy URL is configured.
	ErrMissingURL = errors.New("proxy URL is required")
)

func newValidationError(command, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Command: command,
		Reason:  fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s command: %s", e.Command, e.Reason)
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("transport error (status %d): %s", e.StatusCode, e.Err.Error())
		}

		return fmt.Sprintf("transport error: %s", e.Err.Error())
	}

	return fmt.Sprintf("transport error (status %d): %s", e.StatusCode, string(e.Body))
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

func (e *CommandError) Error() string {
	return e.Message
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("could not format %s reply: %s", e.Family, e.Reason)
}

func (e *BatchAbortedError) Error() string {
	return fmt.Sprintf("transaction aborted: %s", e.Message)
}

// Given an error, determine if we should try to re-send the same
// request body to the proxy.
func shouldRetry(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
