package logging

import (
	"os"
	"strings"
	"time"

	"campusboard/internal/oops"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
}

// Setup configures the global logger. Pretty output is meant for local
// development; everywhere else logs are emitted as JSON lines.
func Setup(level string, pretty bool) {
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr)
	}
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel falls back to info for empty or unknown levels.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func GlobalLogger() *zerolog.Logger {
	return &log.Logger
}

func Trace() *zerolog.Event {
	return log.Trace().Timestamp().Stack()
}

func Debug() *zerolog.Event {
	return log.Debug().Timestamp().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Timestamp().Stack()
}

func Warn() *zerolog.Event {
	return log.Warn().Timestamp().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Timestamp().Stack()
}

func Fatal() *zerolog.Event {
	return log.Fatal().Timestamp().Stack()
}

func With() zerolog.Context {
	return log.With().Stack()
}

// LogPanics recovers a panic in a background goroutine and logs it.
func LogPanics(logger *zerolog.Logger) {
	if r := recover(); r != nil {
		if logger == nil {
			logger = GlobalLogger()
		}
		err, ok := r.(error)
		if !ok {
			err = oops.New(nil, "panic: %v", r)
		}
		logger.Error().Err(err).Msg("recovered from panic")
	}
}
