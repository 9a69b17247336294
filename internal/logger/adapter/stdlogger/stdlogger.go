// Package stdlogger adapts the global zerolog logger to printf style logger
// interfaces, such as the gorm.io/gorm/logger Writer.
package stdlogger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes printf style messages to zerolog.
type Logger struct {
	zl        zerolog.Logger
	printfLvl zerolog.Level
}

// New returns a Logger bound to the current global logger.
// Call it after logger.Init.
func New() *Logger {
	return NewWithComponent("")
}

// NewWithComponent returns a Logger tagging every event with component.
func NewWithComponent(component string) *Logger {
	zl := log.Logger
	if component != "" {
		zl = zl.With().Str("component", component).Logger()
	}

	return &Logger{zl: zl, printfLvl: zerolog.InfoLevel}
}

// Printf implements gorm's logger.Writer. gorm already filters by its own
// level, so everything passed here is written at info.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zl.WithLevel(l.printfLvl).Msgf(format, v...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}
