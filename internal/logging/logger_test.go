package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetLevel(t *testing.T) {
	for levelStr, level := range map[string]logrus.Level{
		"debug":  logrus.DebugLevel,
		"error":  logrus.ErrorLevel,
		"fatal":  logrus.FatalLevel,
		"info":   logrus.InfoLevel,
		"trace":  logrus.TraceLevel,
		"warn":   logrus.WarnLevel,
		"WARN":   logrus.WarnLevel,
		"gibber": logrus.TraceLevel,
		"":       logrus.TraceLevel,
	} {
		assert.Equal(t, level, GetLevel(levelStr), "level string: %q", levelStr)
	}
}
