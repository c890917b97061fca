package terminal

// Logger receives session lifecycle events. *log.Logger from
// github.com/charmbracelet/log satisfies it; when it also has Debugf, the
// parser reports skipped sequences through it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Warn(any, ...any)  {}
