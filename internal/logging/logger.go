package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const serviceName = "bookwerx"

// New returns a JSON logger writing to w. Unknown or empty levels fall back
// to info.
func New(w io.Writer, level string) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger()

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
