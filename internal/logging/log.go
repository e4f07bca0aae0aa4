// Package logging configures the program-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// L is the program logger. Safe to use before Setup; defaults to a console
// writer at info level.
var L = zerolog.New(consoleWriter()).With().Timestamp().Logger()

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
}

// Setup initializes the logger level and optional log file. Debug levels map
// onto zerolog levels: 0 = info, 1 = debug, 2+ = trace.
func Setup(debugLevel int, logFilePath string) error {
	var level zerolog.Level
	switch {
	case debugLevel <= 0:
		level = zerolog.InfoLevel
	case debugLevel == 1:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}

	writers := []io.Writer{consoleWriter()}
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	L = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}
