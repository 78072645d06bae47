package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Logger writes one prefixed line per message, dropping anything above its
// level. Every front end gets one from the root command.
type Logger struct {
	level Level
	lines [LevelDebug + 1]*log.Logger
}

func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	l := &Logger{level: level}
	for lv := LevelError; lv <= LevelDebug; lv++ {
		l.lines[lv] = log.New(out, strings.ToUpper(lv.String())+": ", log.LstdFlags)
	}
	return l
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(LevelError, io.Discard)
}

func (l *Logger) logf(lv Level, format string, args ...any) {
	if l == nil || lv > l.level {
		return
	}
	l.lines[lv].Printf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

func (l *Logger) Level() Level {
	if l == nil {
		return LevelError
	}
	return l.level
}
