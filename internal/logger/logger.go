package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root zerolog logger. Components derive their own loggers
// from it via log.With().Str("component", ...).
//   - level: trace, debug, info, warn, error, fatal, panic
//   - format: "json" for production, "pretty" for dev consoles
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer

	switch format {
	case "pretty":
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	default:
		writer = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}
