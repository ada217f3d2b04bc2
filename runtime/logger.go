package runtime

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// LogLevel is the severity of a log line. Lines below the logger's level are dropped.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)

var levelNames = map[LogLevel]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
	LogLevelOff:   "OFF",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLogLevel accepts the level names case-insensitively, plus the
// aliases WARNING and NONE.
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "WARNING":
		return LogLevelWarn, nil
	case "NONE":
		return LogLevelOff, nil
	}
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level: %s", s)
}

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level LogLevel)
	GetLevel() LogLevel
	With(kv ...any) Logger
}

// DefaultLogger writes "[LEVEL] key=value message" lines through the standard log package.
type DefaultLogger struct {
	mu     *sync.RWMutex
	level  *LogLevel
	logger *log.Logger
	fields string
}

func NewLogger(output io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		mu:     &sync.RWMutex{},
		level:  &level,
		logger: log.New(output, "", log.LstdFlags),
	}
}

// With returns a logger that prefixes every line with the given key/value
// pairs. The child shares level and output with its parent.
func (l *DefaultLogger) With(kv ...any) Logger {
	pairs := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, fmt.Sprintf("%v=%v", kv[i], kv[i+1]))
	}
	sort.Strings(pairs)
	child := *l
	if l.fields != "" {
		pairs = append([]string{l.fields}, pairs...)
	}
	child.fields = strings.Join(pairs, " ")
	return &child
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return *l.level
}

func (l *DefaultLogger) emit(level LogLevel, format string, args ...any) {
	if level < l.GetLevel() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.fields != "" {
		msg = l.fields + " " + msg
	}
	l.logger.Printf("[%s] %s", level, msg)
}

func (l *DefaultLogger) Debug(format string, args ...any) { l.emit(LogLevelDebug, format, args...) }
func (l *DefaultLogger) Info(format string, args ...any)  { l.emit(LogLevelInfo, format, args...) }
func (l *DefaultLogger) Warn(format string, args ...any)  { l.emit(LogLevelWarn, format, args...) }
func (l *DefaultLogger) Error(format string, args ...any) { l.emit(LogLevelError, format, args...) }

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewLogger(os.Stderr, LogLevelInfo)
)

// SetLogger replaces the package logger and returns the previous one.
func SetLogger(l Logger) Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	old := globalLogger
	globalLogger = l
	return old
}

func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func SetLogLevel(level LogLevel) { GetLogger().SetLevel(level) }
func GetLogLevel() LogLevel      { return GetLogger().GetLevel() }

func Debug(format string, args ...any) { GetLogger().Debug(format, args...) }
func Info(format string, args ...any)  { GetLogger().Info(format, args...) }
func Warn(format string, args ...any)  { GetLogger().Warn(format, args...) }
func Error(format string, args ...any) { GetLogger().Error(format, args...) }

// With returns a child of the package logger carrying the given key/value pairs.
func With(kv ...any) Logger { return GetLogger().With(kv...) }

func init() {
	if levelStr := os.Getenv("REMAP_LOG_LEVEL"); levelStr != "" {
		if level, err := ParseLogLevel(levelStr); err == nil {
			SetLogLevel(level)
		}
	}

	// go test binaries only surface errors unless a test opts in
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLogLevel(LogLevelError)
	}
}
