// Package logger is the process-wide printf-style logger backed by logrus.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.RWMutex
	std    = newLogger(os.Stdout, logrus.InfoLevel, FormatText, false)
	closer io.Closer
)

func newLogger(out io.Writer, level logrus.Level, format string, disableColor bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	if format == FormatJSON {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
			DisableColors:   disableColor,
		})
	}
	return l
}

// Init replaces the process logger according to opts.
func Init(opts *Options) error {
	if opts == nil {
		opts = NewOptions()
	}
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	var (
		out io.Writer
		c   io.Closer
	)
	switch opts.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out, c = f, f
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	std = newLogger(out, level, opts.Format, opts.DisableColor)
	closer = c
	return nil
}

// SetOutput redirects the logger, mostly useful in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// Flush releases the log file handle if one is open.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
		std.SetOutput(os.Stdout)
	}
}

// L returns the underlying logrus logger.
func L() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func Debug(format string, args ...any) { L().Debugf(format, args...) }
func Info(format string, args ...any)  { L().Infof(format, args...) }
func Warn(format string, args ...any)  { L().Warnf(format, args...) }
func Error(format string, args ...any) { L().Errorf(format, args...) }
func Fatal(format string, args ...any) { L().Fatalf(format, args...) }

// DebugX logs with a module field attached.
func DebugX(module, format string, args ...any) {
	L().WithField("module", module).Debugf(format, args...)
}

func InfoX(module, format string, args ...any) {
	L().WithField("module", module).Infof(format, args...)
}

func WarnX(module, format string, args ...any) {
	L().WithField("module", module).Warnf(format, args...)
}

func ErrorX(module, format string, args ...any) {
	L().WithField("module", module).Errorf(format, args...)
}
