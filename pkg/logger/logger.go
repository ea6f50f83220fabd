// Package logger owns the process-wide zerolog logger shared by the server and the CLI.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Format selects how log lines are rendered
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Log is the global logger instance
var Log = New(os.Stderr, FormatConsole, zerolog.InfoLevel)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = Log
}

// New builds a logger writing to w at the given level
func New(w io.Writer, format Format, level zerolog.Level) zerolog.Logger {
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// ParseLevel maps a LOG_LEVEL value to a level. ok is false for empty or unknown
// values, which map to info.
func ParseLevel(s string) (level zerolog.Level, ok bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel, false
	}
	return level, true
}

// ParseFormat maps a LOG_FORMAT value to a format, falling back when it is empty
func ParseFormat(s string, fallback Format) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatConsole:
		return FormatConsole
	default:
		return fallback
	}
}

// Configure replaces the global logger, including the one behind zerolog/log
func Configure(levelStr string, format Format) {
	level, ok := ParseLevel(levelStr)
	zerolog.SetGlobalLevel(level)
	Log = New(os.Stderr, format, level)
	log.Logger = Log
	if !ok && levelStr != "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
	}
}
