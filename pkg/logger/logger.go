package logger

// Field is a single structured log field.
type Field struct {
	Key   string
	Value any
}

// Client is the logging interface the rest of the codebase depends on.
type Client interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Client
}
