package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the console logger and sets the global level
func Init(level string) error {
	return InitWithWriter(level, os.Stdout)
}

// InitWithWriter is Init with an explicit output, used by tests
func InitWithWriter(level string, out io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    out != os.Stdout,
	}

	log = zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(lvl)

	return nil
}

// ParseLevel maps a configured level name to a zerolog level
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

// Fatal logs and exits the program once the event is sent
func Fatal() *zerolog.Event {
	return log.Fatal()
}
