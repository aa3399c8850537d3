package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

// LogLevel represents the log level
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// Config represents logger configuration
type Config struct {
	Level LogLevel
	// Pretty enables the human-readable console writer
	Pretty bool
	// Output defaults to os.Stdout
	Output io.Writer
	// Service is attached to every event when set
	Service string
}

// ParseConfig builds a Config from the textual level/format settings.
// Format "text" or "pretty" selects the console writer, anything else JSON.
func ParseConfig(level, format string) Config {
	f := strings.ToLower(strings.TrimSpace(format))
	return Config{
		Level:  LogLevel(strings.ToLower(strings.TrimSpace(level))),
		Pretty: f == "text" || f == "pretty",
	}
}

// Configure configures the global logger and returns it
func Configure(config Config) zerolog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(string(config.Level))
	if err != nil || config.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var writer io.Writer = config.Output
	if config.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.RFC3339,
		}
	}

	ctx := zerolog.New(writer).With().Timestamp()
	if config.Service != "" {
		ctx = ctx.Str("service", config.Service)
	}
	defaultLogger = ctx.Logger()
	log.Logger = defaultLogger
	return defaultLogger
}

// Get returns the configured global logger
func Get() zerolog.Logger {
	return defaultLogger
}

// Nop returns a logger that discards everything, handy in tests
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

func Info() *zerolog.Event {
	return defaultLogger.Info()
}

func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Fatal logs and then exits the process
func Fatal() *zerolog.Event {
	return defaultLogger.Fatal()
}

// WithField returns a child logger carrying key
func WithField(key string, value interface{}) zerolog.Logger {
	return defaultLogger.With().Interface(key, value).Logger()
}

func init() {
	Configure(Config{
		Level:  InfoLevel,
		Pretty: true,
		Output: os.Stdout,
	})
}
