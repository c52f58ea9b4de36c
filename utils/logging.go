package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a text logger with millisecond timestamps. LOG_LEVEL wins
// over verbose when it parses.
func NewLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	logger.SetLevel(logrus.InfoLevel)
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
			return logger
		}
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
