package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// Options controls where and how much the logger writes.
type Options struct {
	Level string // debug | info | warn | error
	File  string // optional rotating JSON log file; empty disables it
}

// New builds a logger writing to stdout and, when File is set, to a rotating file.
func New(opts Options) *Logger {
	level := zap.NewAtomicLevelAt(toZapLevel(opts.Level))
	cores := []zapcore.Core{consoleCore(level)}
	if opts.File != "" {
		cores = append(cores, fileCore(opts.File, level))
	}
	return &Logger{
		SugaredLogger: zap.New(zapcore.NewTee(cores...)).Sugar(),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("component", component)}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}
