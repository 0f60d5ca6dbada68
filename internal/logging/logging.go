// Package logging provides component-tagged leveled logging with optional
// file output and size-based rotation.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
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
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
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

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a new Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	File       string `mapstructure:"file"`        // log file path (empty = console only)
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // max size before rotation
	MaxBackups int    `mapstructure:"max_backups"` // rotated files to keep
}

// DefaultConfig returns default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger writes one line per event to the console and, when configured,
// to a rotating log file.
type Logger struct {
	level      Level
	mu         sync.Mutex
	fs         afero.Fs
	file       afero.File
	filePath   string
	maxSize    int64
	maxBackups int
	console    io.Writer
	now        func() time.Time
}

// New creates a Logger that writes to stderr and, if cfg.File is set, to
// that file on the OS filesystem.
func New(cfg Config) (*Logger, error) {
	return NewWithFs(cfg, afero.NewOsFs(), os.Stderr)
}

// NewWithFs creates a Logger whose log file lives on fs. A nil console
// disables console output.
func NewWithFs(cfg Config, fs afero.Fs, console io.Writer) (*Logger, error) {
	l := &Logger{
		level:      ParseLevel(cfg.Level),
		fs:         fs,
		maxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
		console:    console,
		now:        time.Now,
	}
	if l.maxSize <= 0 {
		l.maxSize = 10 * 1024 * 1024
	}
	if l.maxBackups <= 0 {
		l.maxBackups = 5
	}

	if cfg.File == "" {
		return l, nil
	}

	if strings.HasPrefix(cfg.File, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to get home dir: %w", err)
		}
		cfg.File = filepath.Join(home, cfg.File[1:])
	}
	l.filePath = cfg.File

	if err := fs.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	if err := l.openFile(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewConsole returns a Logger that only writes to w.
func NewConsole(w io.Writer, level string) *Logger {
	return &Logger{level: ParseLevel(level), console: w, now: time.Now}
}

func (l *Logger) openFile() error {
	f, err := l.fs.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	l.file = f
	return nil
}

func (l *Logger) checkRotation() error {
	if l.file == nil {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxSize {
		return nil
	}

	l.file.Close()
	l.file = nil
	if err := rotateFiles(l.fs, l.filePath, l.maxBackups); err != nil {
		return err
	}
	return l.openFile()
}

func (l *Logger) log(level Level, component, msg string, err error, fields ...Field) {
	if !l.Enabled(level) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rotErr := l.checkRotation(); rotErr != nil {
		fmt.Fprintf(os.Stderr, "log rotation error: %v\n", rotErr)
	}

	line := formatLine(l.now(), level, component, msg, err, fields)
	for _, w := range []io.Writer{l.console, l.file} {
		if w != nil {
			w.Write(line)
		}
	}
}

// formatLine renders one event as
// "<RFC3339> [LEVEL] [component] msg | error=... | key=value".
func formatLine(t time.Time, level Level, component, msg string, err error, fields []Field) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", t.Format(time.RFC3339), level, component, msg)
	if err != nil {
		sb.WriteString(" | error=")
		sb.WriteString(err.Error())
	}
	for _, f := range fields {
		fmt.Fprintf(&sb, " | %s=%v", f.Key, f.Value)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

// Enabled reports whether events at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.level
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields...)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields...)
}

// Error logs an error message with an error
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields...)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// FilePath returns the log file path
func (l *Logger) FilePath() string {
	return l.filePath
}

// Nop returns a logger that discards all output
func Nop() *Logger {
	return &Logger{level: LevelError + 1, now: time.Now}
}
