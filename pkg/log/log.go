// Package log provides the logging indirection used throughout gomeboy.
// Call sites depend only on the Logger interface so the backing
// implementation can be swapped without touching emulation code.
package log

import "github.com/sirupsen/logrus"

type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	l *logrus.Logger
}

// New returns a Logger backed by logrus, formatted for terminal output
// without timestamps (the emulator's own frame counter is the clock that
// matters when reading logs).
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
	}
	return &logger{l: l}
}

func (l *logger) Infof(format string, args ...interface{})  { l.l.Infof(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.l.Errorf(format, args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.l.Debugf(format, args...) }
