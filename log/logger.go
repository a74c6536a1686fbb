package log

import (
	tmlog "github.com/tendermint/tendermint/libs/log"
)

// Logger interface is compatible with Tendermint logger
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

var _ Logger = tmlog.NewNopLogger()

// With returns a logger that adds keyvals to every line, when the underlying logger
// supports it, and logger itself otherwise.
func With(logger Logger, keyvals ...interface{}) Logger {
	if l, ok := logger.(tmlog.Logger); ok {
		return l.With(keyvals...)
	}
	return logger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return tmlog.NewNopLogger()
}
