package log

// nullLogger discards everything written to it. It is the default logger
// wherever a constructor is given none.
type nullLogger struct{}

// NewNullLogger returns a Logger that discards all output.
func NewNullLogger() Logger { return &nullLogger{} }

func (nullLogger) Infof(format string, args ...interface{})  {}
func (nullLogger) Errorf(format string, args ...interface{}) {}
func (nullLogger) Debugf(format string, args ...interface{}) {}
