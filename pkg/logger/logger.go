package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Process-wide leveled logger used by the site and the mirror command.
// - zerolog underneath (JSON by default, console output with SetFormat("pretty"))
// - provides Debug/Info/Warn/Error/Fatal variants and Init(level)

const service = "resources"

var (
	mu     sync.RWMutex
	pretty bool
)

var (
	out    io.Writer      = os.Stdout
	level  zerolog.Level  = zerolog.InfoLevel
	logger zerolog.Logger = build()
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	case "fatal":
		level = zerolog.FatalLevel
	default:
		level = zerolog.InfoLevel
	}
	logger = build()
}

// SetFormat switches between "json" (default) and "pretty" console output.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	pretty = strings.EqualFold(strings.TrimSpace(f), "pretty")
	logger = build()
}

// setOutput redirects log output; callers must hold no lock.
func setOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = build()
}

func build() zerolog.Logger {
	var w io.Writer = out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", service).Logger()
}

// Logger returns the current zerolog logger for structured events.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debugf(format string, v ...interface{}) {
	l := Logger()
	l.Debug().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	l := Logger()
	l.Info().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	l := Logger()
	l.Warn().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	l := Logger()
	l.Error().Msgf(format, v...)
}

// Fatalf logs regardless of level and exits the process.
func Fatalf(format string, v ...interface{}) {
	l := Logger()
	l.WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return level.String()
}
