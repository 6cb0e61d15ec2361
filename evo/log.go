package evo

import (
	"log"
	"os"

	"github.com/pkg/errors"
)

// LoggerLevel names one of the four severities recognized by InitLogger.
type LoggerLevel string

const (
	LogLevelDebug   LoggerLevel = "debug"
	LogLevelInfo    LoggerLevel = "info"
	LogLevelWarning LoggerLevel = "warn"
	LogLevelError   LoggerLevel = "error"
)

// LogLevel is the currently active severity threshold. Messages below it are
// dropped. Defaults to LogLevelInfo until InitLogger is called.
var LogLevel = LogLevelInfo

var (
	loggerDebug = log.New(os.Stdout, "DEBUG: ", log.Ltime|log.Lshortfile)
	loggerInfo  = log.New(os.Stdout, "INFO: ", log.Ltime)
	loggerWarn  = log.New(os.Stdout, "WARN: ", log.Ltime|log.Lshortfile)
	loggerError = log.New(os.Stderr, "ERROR: ", log.Ltime|log.Lshortfile)
)

// DebugLog, InfoLog, WarnLog, and ErrorLog are the package's logging
// entry points. They are plain function variables so tests can swap them
// out for a no-op or a buffer.
var (
	DebugLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelDebug) {
			_ = loggerDebug.Output(2, message)
		}
	}
	InfoLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelInfo) {
			_ = loggerInfo.Output(2, message)
		}
	}
	WarnLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelWarning) {
			_ = loggerWarn.Output(2, message)
		}
	}
	ErrorLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelError) {
			_ = loggerError.Output(2, message)
		}
	}
)

// InitLogger sets the active log level from its string name.
func InitLogger(level string) error {
	switch LoggerLevel(level) {
	case LogLevelDebug:
		LogLevel = LogLevelDebug
	case LogLevelInfo:
		LogLevel = LogLevelInfo
	case LogLevelWarning:
		LogLevel = LogLevelWarning
	case LogLevelError:
		LogLevel = LogLevelError
	default:
		return errors.Errorf("unsupported log level: [%s]", level)
	}
	return nil
}

// levelRank orders severities from most to least verbose.
var levelRank = map[LoggerLevel]int{
	LogLevelDebug:   0,
	LogLevelInfo:    1,
	LogLevelWarning: 2,
	LogLevelError:   3,
}

func acceptLogLevel(current, target LoggerLevel) bool {
	currentRank, ok := levelRank[current]
	if !ok {
		return false
	}
	return levelRank[target] >= currentRank
}
