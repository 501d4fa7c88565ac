// Package logging defines the caller-supplied logging interface shared by
// v2pool, v3pool, and arbitrage, matching the Logger shape used throughout
// the teacher codebase (differ.Logger, streams/jsonrpc/client.Logger):
// callers bring their own structured logger, the library never forces one.
package logging

// Logger is a minimal structured-logging interface. Any of logrus,
// zap's SugaredLogger, or slog's Logger satisfy this shape with a thin
// adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Nop is a Logger that discards everything. It is the default when a
// constructor is not given one.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// OrNop returns l if non-nil, else Nop{}.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
