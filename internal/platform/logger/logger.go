package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string
	Format string
}

// New crea el logger de la aplicación sobre logrus.
func New(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(opts.Level))

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return l
}

// NewFromEnv crea logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME=vet-clinic (opcional, se agrega como campo "app")
func NewFromEnv() *logrus.Entry {
	l := New(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})

	fields := logrus.Fields{}
	if app := strings.TrimSpace(os.Getenv("APP_NAME")); app != "" {
		fields["app"] = app
	}
	return l.WithFields(fields)
}

// WithComponent agrega el campo "component" para distinguir subsistemas.
func WithComponent(l *logrus.Entry, name string) *logrus.Entry {
	return l.WithField("component", name)
}

func parseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
