package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps "debug", "info", "warning"/"warn" and "error" to a Level.
// Anything else is treated as info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging to stdout/stderr and an optional file.
type Logger struct {
	mu    sync.Mutex
	level Level

	debugLog   *log.Logger
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger

	file *os.File
}

// New creates a Logger writing info and below to out and warnings and errors to errOut.
func New(level Level, out, errOut io.Writer) *Logger {
	l := &Logger{level: level}
	l.setupLoggers(out, errOut)
	return l
}

// NewStd logs to stdout/stderr and, when path is set, also appends to that file.
func NewStd(level Level, path string) (*Logger, error) {
	if path == "" {
		return New(level, os.Stdout, os.Stderr), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	l := New(level, io.MultiWriter(os.Stdout, f), io.MultiWriter(os.Stderr, f))
	l.file = f
	return l, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(LevelError+1, io.Discard, io.Discard)
}

func (l *Logger) setupLoggers(out, errOut io.Writer) {
	flags := log.Ldate | log.Ltime
	l.debugLog = log.New(out, "DEBUG   ", flags)
	l.infoLog = log.New(out, "INFO    ", flags)
	l.warningLog = log.New(errOut, "WARNING ", flags)
	l.errorLog = log.New(errOut, "ERROR   ", flags)
}

func (l *Logger) Debug(format string, v ...any) {
	l.write(LevelDebug, l.debugLog, format, v...)
}

func (l *Logger) Info(format string, v ...any) {
	l.write(LevelInfo, l.infoLog, format, v...)
}

func (l *Logger) Warning(format string, v ...any) {
	l.write(LevelWarning, l.warningLog, format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.write(LevelError, l.errorLog, format, v...)
}

func (l *Logger) write(level Level, out *log.Logger, format string, v ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out.Printf(format, v...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
