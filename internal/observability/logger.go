package observability

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// Critical logs at error level tagged with critical severity. logrus has no
// level between error and fatal, and fatal exits the process.
func Critical(entry *logrus.Entry, msg string) {
	entry.WithField("severity", "critical").Error(msg)
}
