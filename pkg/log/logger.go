// Package log wires zerolog into the module: one shared logger, console
// or JSON output, and a bridge that turns pkg/errors warnings into
// structured warn-level events.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/scalego/scalego/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// Setup configures the shared logger and routes estimator warnings into it.
// level is one of debug, info, warn, error; console selects human-readable
// output instead of JSON.
func Setup(level string, console bool) {
	var w io.Writer = os.Stderr
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	SetOutput(w, level)
}

// SetOutput installs a logger writing to w at the given level. Tests use
// this to capture output in a buffer.
func SetOutput(w io.Writer, level string) {
	l := zerolog.New(w).Level(toLevel(level)).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()

	errors.SetWarningHandler(func(warning error) {
		l := Logger()
		ev := l.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.Object("warning", obj)
		}
		ev.Msg(warning.Error())
	})
}

// Logger returns the shared logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func toLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
