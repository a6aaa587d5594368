package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a text logger writing to stderr at the given level
// (debug|info|warn|error). Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(level string, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// ParseLevel converts a level name to a logrus level.
func ParseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Discard returns a logger that drops everything, for tests and library defaults.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
