// internal/config/log.go
package config

import (
	"github.com/sirupsen/logrus"
)

// Apply configures l from normalized log settings.
func (c LogConfig) Apply(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
