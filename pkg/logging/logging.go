package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ghostal/pkg/config"
)

// New builds the process logger from the log section of the config.
func New(cfg config.Log, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(out)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// WithRun tags every entry of one command invocation with a fresh run id.
func WithRun(log logrus.FieldLogger, command string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"command": command,
	})
}

// Discard returns a logger that drops everything; used by tests and library callers
// that pass no logger.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
