// Package logging builds the leveled go-kit loggers used for diagnostics.
// Progress output for the user goes through internal/cli instead.
package logging

import (
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Debug   bool
	// LogFile, when set, receives JSON records in addition to w.
	LogFile string
}

// New returns a logfmt logger on w, filtered to info (or debug), and a
// closer for the optional log file.
func New(w io.Writer, opts Options) (log.Logger, io.Closer) {
	var logger log.Logger = log.NewLogfmtLogger(log.NewSyncWriter(w))

	var closer io.Closer = nopCloser{}
	if opts.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		logger = teeLogger{logger, log.NewJSONLogger(log.NewSyncWriter(lj))}
		closer = lj
	}

	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if opts.Debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	// DefaultCaller is depth-sensitive; it must wrap the filter.
	logger = log.With(logger, "caller", log.DefaultCaller)
	return logger, closer
}

// teeLogger fans a record out to every logger, returning the first error.
type teeLogger []log.Logger

func (t teeLogger) Log(keyvals ...interface{}) error {
	var first error
	for _, l := range t {
		if err := l.Log(keyvals...); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
