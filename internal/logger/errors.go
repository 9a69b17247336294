package logger

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// ErrUnsupportedLevel is returned for a Log.LogLevel zerolog does not know.
	ErrUnsupportedLevel = errors.New("unsupported log level")
)

var writeFailures atomic.Uint64 //nolint:gochecknoglobals

// WriteFailures returns how many events could not be written since start.
func WriteFailures() uint64 {
	return writeFailures.Load()
}

// ErrorHandler is installed as zerolog.ErrorHandler. Failed writes are
// counted and reported on stderr.
func ErrorHandler(err error) {
	writeFailures.Add(1)

	_, _ = fmt.Fprintf(os.Stderr, "authgate: could not write log event: %v\n", err)
}
