package restbq

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// NewLogger builds a logger writing JSON lines with timestamps to w.
// With pretty, it writes human friendly lines instead.
func NewLogger(w io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), xerrors.Errorf("invalid log level %q: %w", level, err)
		}
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
