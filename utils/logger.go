package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Logger returns the process-wide logger
func Logger() *logrus.Logger {
	return logger
}

// ConfigureLogger sets the level ("debug", "info", ...) and format ("text" or "json")
func ConfigureLogger(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

// SetLogOutput redirects the logger, mainly for tests
func SetLogOutput(out io.Writer) {
	logger.SetOutput(out)
}

func caller() logrus.Fields {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return logrus.Fields{}
	}
	return logrus.Fields{"caller": fmt.Sprintf("%s:%d", filepath.Base(file), line)}
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	logger.WithFields(caller()).Infof(format, v...)
}

// LogWarn logs a recoverable problem
func LogWarn(format string, v ...interface{}) {
	logger.WithFields(caller()).Warnf(format, v...)
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	logger.WithFields(caller()).Errorf(format, v...)
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	logger.WithFields(caller()).Debugf(format, v...)
}

// LogOperation logs how an operation ended and how long it took
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	entry := logger.WithFields(caller()).WithFields(logrus.Fields{
		"operation": operation,
		"duration":  duration,
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
		return
	}
	entry.Debug("operation completed")
}
