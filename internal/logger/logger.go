// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger writing to stdout
func NewLogger(logLevel string) *logrus.Logger {
	return NewLoggerWithOutput(logLevel, os.Stdout, os.Getenv("ENVIRONMENT") == "production")
}

// NewLoggerWithOutput creates a logger writing to out. JSON output is used in
// production, coloured text everywhere else.
func NewLoggerWithOutput(logLevel string, out io.Writer, jsonFormat bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return log
}

// ForEnvironment creates the logger for a configured environment name
func ForEnvironment(logLevel, environment string) *logrus.Logger {
	return NewLoggerWithOutput(logLevel, os.Stdout, environment == "production")
}
