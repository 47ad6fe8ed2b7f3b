package restis

import (
	"fmt"
	"log"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/restis/restis/iface"
)

type (
	// Logger is an interface to the logger the client writes to.
	Logger = iface.Logger

	defaultLogger struct{}
	nilLogger     struct{}

	goKitLogger struct {
		logger kitlog.Logger
	}
)

func NewNilLogger() Logger {
	return &nilLogger{}
}

// NewGoKitLogger writes client messages to a go-kit logger at debug level.
func NewGoKitLogger(logger kitlog.Logger) Logger {
	return &goKitLogger{logger: level.Debug(logger)}
}

func (l *defaultLogger) Printf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

func (l *nilLogger) Printf(format string, args ...interface{}) {
}

func (l *goKitLogger) Printf(format string, args ...interface{}) {
	l.logger.Log("msg", fmt.Sprintf(format, args...))
}
