package log

// discardLogger implements Logger and drops every message; it is the
// default used by every SDK component when enableLogging is false.
type discardLogger struct{}

// Discard returns a no-op logger.
func Discard() Logger {
	return discardLogger{}
}

func (discardLogger) Debug(args ...any)                    {}
func (discardLogger) Debugf(format string, args ...any)     {}
func (discardLogger) Info(args ...any)                      {}
func (discardLogger) Infof(format string, args ...any)      {}
func (discardLogger) Warning(args ...any)                   {}
func (discardLogger) Warningf(format string, args ...any)   {}
func (discardLogger) Error(args ...any)                     {}
func (discardLogger) Errorf(format string, args ...any)     {}
func (discardLogger) WithFields(fields Fields) Logger       { return discardLogger{} }
func (discardLogger) WithField(key string, value any) Logger { return discardLogger{} }
func (discardLogger) SetLevel(lvl Level)                    {}
func (discardLogger) Sub(tags Fields) Logger                { return discardLogger{} }
