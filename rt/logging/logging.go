package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	out   *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newDefaultLogger(os.Stderr, prefix, debug)
}

func newDefaultLogger(w io.Writer, prefix string, debug bool) *DefaultLogger {
	out := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.StampMicro,
		Prefix:          prefix,
	})
	l := &DefaultLogger{out: out}
	l.SetDebug(debug)
	return l
}

// SetLevel applies a textual level ("debug", "info", "warn", "error").
func (l *DefaultLogger) SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.debug = lvl <= log.DebugLevel
	l.out.SetLevel(lvl)
	l.mu.Unlock()
	return nil
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	if enabled {
		l.out.SetLevel(log.DebugLevel)
	} else {
		l.out.SetLevel(log.InfoLevel)
	}
	l.mu.Unlock()
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.out.Debugf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Infof(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.out.Warnf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.out.Errorf(format, args...)
}

// Nop logger

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
