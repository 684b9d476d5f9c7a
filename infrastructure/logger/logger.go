package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	env := os.Getenv("ENV")
	// Prefer stdout (better with systemd/docker); LOG_TO_FILE=true writes to ./logs instead.
	logger.Out = os.Stdout
	if os.Getenv("LOG_TO_FILE") == "true" {
		if f, err := openLogFile(env); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stdout", err)
		} else {
			logger.Out = f
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(levelFromEnv(env))
}

func openLogFile(env string) (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logsDir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

func levelFromEnv(env string) log.Level {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if lvl, err := log.ParseLevel(v); err == nil {
			return lvl
		}
	}
	if env == "prod" || env == "production" {
		return log.InfoLevel
	}
	return log.DebugLevel
}

// GetLogger returns an entry annotated with the caller's function, file and line.
func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	functionObject := runtime.FuncForPC(function)
	fields := log.Fields{
		"file": file,
		"line": line,
	}
	if functionObject != nil {
		fields["function"] = functionObject.Name()
	}
	return logger.WithFields(fields)
}

// SetOutputLevel adjusts the level at runtime (used by tests to silence output).
func SetOutputLevel(level log.Level) {
	logger.SetLevel(level)
}
