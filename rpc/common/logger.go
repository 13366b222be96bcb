package common

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// --------------------------------------------------------------------------
// Log Levels
// --------------------------------------------------------------------------

// LogLevel controls the verbosity of a named logger.
type LogLevel int

const (
	CRITICAL LogLevel = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// --------------------------------------------------------------------------
// Custom Logger
// --------------------------------------------------------------------------

// ILogger is the leveled logging interface used throughout the RPC layer.
type ILogger interface {
	SetLevel(level LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// namedLogger implements the ILogger interface with custom formatting
type namedLogger struct {
	name   string
	level  LogLevel
	logger *log.Logger
}

func (l *namedLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *namedLogger) Debugf(format string, args ...interface{}) {
	if l.level >= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *namedLogger) Infof(format string, args ...interface{}) {
	if l.level >= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *namedLogger) Warningf(format string, args ...interface{}) {
	if l.level >= WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *namedLogger) Errorf(format string, args ...interface{}) {
	if l.level >= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *namedLogger) Panicf(format string, args ...interface{}) {
	if l.level >= CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message. this internal helper is used by the public methods
func (l *namedLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Registry
// --------------------------------------------------------------------------

var (
	loggersMu sync.Mutex
	loggers   = map[string]*namedLogger{}
)

// GetLogger returns the logger registered under pkgName, creating it with
// level INFO on first use. The same name always yields the same instance.
func GetLogger(pkgName string) ILogger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[pkgName]; ok {
		return l
	}

	// Create standard logger with custom flags
	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	l := &namedLogger{
		name:   pkgName,
		level:  INFO,
		logger: stdLogger,
	}
	loggers[pkgName] = l
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to LogLevel
func parseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of debug, info, warn, error", level))
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers initializes all loggers with the configured level
func InitLoggers(config ServerConfig) {
	level := parseLogLevel(config.LogLevel)

	GetLogger("store").SetLevel(level)
	GetLogger("transport/rpc").SetLevel(level)
	GetLogger("rpc").SetLevel(level)
	GetLogger("client").SetLevel(level)
}
