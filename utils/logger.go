package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging throughout the application.
type Logger struct {
	mu    sync.RWMutex
	level Level
	out   *log.Logger
	err   *log.Logger
}

// NewLogger creates a Logger at info level writing to stdout/stderr.
func NewLogger() *Logger {
	return &Logger{
		level: LevelInfo,
		out:   log.New(os.Stdout, "", 0),
		err:   log.New(os.Stderr, "", 0),
	}
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() *Logger {
	l := NewLogger()
	l.SetOutput(io.Discard, io.Discard)
	return l
}

// SetLevel changes the minimum level that gets written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects regular and error output.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.SetOutput(out)
	l.err.SetOutput(errOut)
}

// Writer exposes the info stream, e.g. for gin's access log.
func (l *Logger) Writer() io.Writer {
	return l.out.Writer()
}

func (l *Logger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	if !l.enabled(LevelInfo) {
		return
	}
	l.out.Printf("[%s] \033[32mINFO\033[0m  %s", l.timestamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	if !l.enabled(LevelWarn) {
		return
	}
	l.out.Printf("[%s] \033[33mWARN\033[0m  %s", l.timestamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	if !l.enabled(LevelError) {
		return
	}
	l.err.Printf("[%s] \033[31mERROR\033[0m %s", l.timestamp(), fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.enabled(LevelDebug) {
		return
	}
	l.out.Printf("[%s] \033[36mDEBUG\033[0m %s", l.timestamp(), fmt.Sprintf(format, args...))
}
