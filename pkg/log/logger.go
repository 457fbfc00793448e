// Package log builds the zerolog loggers used by the command line tools.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hed1ad/syscallguard/pkg/errors"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Pretty selects the human-readable console format instead of JSON lines.
	Pretty bool
	// Writer receives log output. Nil means stderr.
	Writer io.Writer
}

// New returns a logger for opts, tagged with the component name.
func New(component string, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if name := strings.TrimSpace(opts.Level); name != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(name))
		if err != nil {
			return zerolog.Nop(), errors.InvalidConfiguration("log-level", opts.Level, "unknown log level")
		}
		level = parsed
	}

	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: out != os.Stderr}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger(), nil
}
