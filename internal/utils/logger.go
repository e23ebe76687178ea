package utils

import (
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetFormatter(&logrus.JSONFormatter{})
}

// SetupLogger sets the global log level from a config string
func SetupLogger(level string) {
	switch level {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "info":
		Logger.SetLevel(logrus.InfoLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
}

// WithCommand returns an entry tagged with the movement request id and move name
func WithCommand(id, move string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{
		"request_id": id,
		"move":       move,
	})
}
