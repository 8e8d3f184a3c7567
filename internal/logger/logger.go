package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New configures the standard logrus logger and returns it.
// Log level can be debug, info, warn, error. Unknown levels fall back to info.
// Development uses the text formatter, everything else emits JSON.
func New(level, env string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	if env == "development" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
