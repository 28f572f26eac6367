package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process logger handed to every component.
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// NewLogger builds the JSON (or text, for local runs) logger at the given level.
// Unknown levels fall back to info.
func NewLogger(level string, json bool) *logrus.Logger {
	return newLogger(os.Stdout, level, json)
}

func newLogger(out io.Writer, level string, json bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NewLoggerWithService tags every entry with the service name.
func NewLoggerWithService(service, level string, json bool) *logrus.Entry {
	return NewLogger(level, json).WithField("service", service)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
