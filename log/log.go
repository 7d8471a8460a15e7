// Package log is the plugin wide logging facade. All packages log through it so
// the sink and verbosity are configured in one place.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SonarLogLevelEnvVariable overrides the default log level, accepted values are
// the zerolog level strings (debug, info, warn, error).
const SonarLogLevelEnvVariable = "SONAR_PLUGIN_LOG_LEVEL"

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: false}
	level := zerolog.InfoLevel
	if value := os.Getenv(SonarLogLevelEnvVariable); value != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(value)); err == nil {
			level = parsed
		}
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// SetOutput redirects the logger, used by tests to capture output.
func SetOutput(out io.Writer) {
	logger = newLogger(out)
}

// SetLevel changes the logger verbosity at runtime.
func SetLevel(level zerolog.Level) {
	logger = logger.Level(level)
}

func Debug(a ...any) {
	logger.Debug().Msg(sprint(a...))
}

func Info(a ...any) {
	logger.Info().Msg(sprint(a...))
}

func Warn(a ...any) {
	logger.Warn().Msg(sprint(a...))
}

func Error(a ...any) {
	logger.Error().Msg(sprint(a...))
}

func Debugf(format string, a ...any) {
	logger.Debug().Msgf(format, a...)
}

func Infof(format string, a ...any) {
	logger.Info().Msgf(format, a...)
}

func Warnf(format string, a ...any) {
	logger.Warn().Msgf(format, a...)
}

func Errorf(format string, a ...any) {
	logger.Error().Msgf(format, a...)
}

func sprint(a ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(a...), "\n")
}
