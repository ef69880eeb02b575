// Package logger provides the structured console logger used by all
// docbench components.
package logger

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// ANSI color codes for console output
const (
	colorReset        = "\033[0m"
	colorCyan         = "\033[36m"
	colorGreen        = "\033[32m"
	colorBrightRed    = "\033[91m"
	colorBrightYellow = "\033[93m"
	colorBrightGray   = "\033[90m"
)

// Column widths for aligned output
const (
	componentWidth = 16
	levelWidth     = 5
)

// Level is a log severity level.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to INFO.
func ParseLevel(name string) Level {
	switch name {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	case "fatal", "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Logger writes leveled, column-aligned log lines to stderr.
type Logger struct {
	component    string
	level        atomic.Int32
	colorEnabled bool
}

// New creates a logger for the named component.
func New(component string) *Logger {
	l := &Logger{
		component:    component,
		colorEnabled: isTerminal(),
	}
	l.level.Store(int32(LevelInfo))
	return l
}

// Named returns a logger for a sub-component that shares this logger's level.
func (l *Logger) Named(component string) *Logger {
	child := &Logger{
		component:    component,
		colorEnabled: l.colorEnabled,
	}
	child.level.Store(l.level.Load())
	return child
}

// SetLevel sets the minimum level that will be written.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// isTerminal checks if we're outputting to a terminal (for color support)
func isTerminal() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fileInfo, _ := os.Stderr.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

func (l *Logger) colorForLevel(level Level) string {
	if !l.colorEnabled {
		return ""
	}
	switch level {
	case LevelDebug:
		return colorBrightGray
	case LevelInfo:
		return colorGreen
	case LevelWarn:
		return colorBrightYellow
	case LevelError, LevelFatal:
		return colorBrightRed
	default:
		return colorReset
	}
}

func (l *Logger) log(level Level, message string) {
	if int32(level) < l.level.Load() {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	color := l.colorForLevel(level)
	reset := ""
	cyan := ""
	if l.colorEnabled {
		reset = colorReset
		cyan = colorCyan
	}

	component := l.component
	if len(component) > componentWidth {
		component = component[:componentWidth-1] + "…"
	}

	fmt.Fprintf(os.Stderr, "%s[%s]%s [%-*s] [%s%-*s%s] %s\n",
		cyan, timestamp, reset,
		componentWidth, component,
		color, levelWidth, level, reset,
		message)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string) {
	l.log(LevelDebug, message)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs an info message.
func (l *Logger) Info(message string) {
	l.log(LevelInfo, message)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.log(LevelWarn, message)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(message string) {
	l.log(LevelError, message)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(message string) {
	l.log(LevelFatal, message)
	os.Exit(1)
}

// Fatalf logs a formatted fatal message and exits.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}
