package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// Level represents the severity of a log message
type Level int

// Log levels
const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelColors = map[Level]string{
	DEBUG: "\033[36m", // Cyan
	INFO:  "\033[32m", // Green
	WARN:  "\033[33m", // Yellow
	ERROR: "\033[31m", // Red
}

var levelPrefixes = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO ",
	WARN:  "WARN ",
	ERROR: "ERROR",
}

// Logger writes levelled, caller-annotated lines. It satisfies core.Logger,
// logging Printf output at INFO.
type Logger struct {
	level     Level
	logger    *log.Logger
	useColors bool
	now       func() time.Time
}

// ParseLevel converts a level name to a Level
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", levelStr)
}

// New creates a logger writing to w. Unknown level names fall back to INFO.
// Colours are enabled only when w is a terminal.
func New(levelStr string, w io.Writer) *Logger {
	level, _ := ParseLevel(levelStr)
	if w == nil {
		w = os.Stdout
	}

	return &Logger{
		level:     level,
		logger:    log.New(w, "", 0),
		useColors: isTerminal(w),
		now:       time.Now,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Level returns the minimum level that is written
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	prefix := fmt.Sprintf("%s [%s] %s:%d:", l.now().Format("2006/01/02 15:04:05"), levelPrefixes[level], file, line)
	if l.useColors {
		prefix = levelColors[level] + prefix + "\033[0m"
	}

	l.logger.Println(prefix, strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// Printf logs at INFO
func (l *Logger) Printf(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}
