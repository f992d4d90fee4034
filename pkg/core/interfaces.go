package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// LoggerFunc adapts a plain function to the Logger interface
type LoggerFunc func(format string, args ...interface{})

// Printf calls f
func (f LoggerFunc) Printf(format string, args ...interface{}) {
	f(format, args...)
}

// NopLogger discards everything
var NopLogger Logger = LoggerFunc(func(string, ...interface{}) {})
