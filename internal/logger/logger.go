// Package logger is the process-wide leveled logger. Data-path verbs log
// through Verb at DEBUG with a normalized "op object: detail" shape;
// lifecycle events use Info and up. The default level is INFO so the store
// is quiet in normal operation.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	out          io.Writer = os.Stdout
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

func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

// SetOutput redirects log output. The default is stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func logf(level Level, format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < currentLevel {
		return
	}
	fmt.Fprintf(out, "[%s] [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, v...))
}

// Verb records a data-path operation at DEBUG. The object may be empty for
// verbs that act on the pool rather than a single object, and the detail
// may be empty for verbs with nothing further to say.
func Verb(op, object, format string, v ...any) {
	msg := op
	if object != "" {
		msg += " " + object
	}
	if detail := fmt.Sprintf(format, v...); detail != "" {
		msg += ": " + detail
	}
	logf(LevelDebug, "%s", msg)
}

func Debug(format string, v ...any) {
	logf(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	logf(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	logf(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	logf(LevelError, format, v...)
}
