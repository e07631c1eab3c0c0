package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("info"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("garbage"))
}

func TestNewRespectsLevelAndWritesCallerAnnotatedLines(t *testing.T) {
	log := New("warn")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("should be suppressed")
	assert.Empty(t, buf.String())

	log.Warn("boiling over")
	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "boiling over")
	assert.Contains(t, out, "logging_test.go")
}

func TestFormatterRendersStructuredFields(t *testing.T) {
	log := New("debug")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithFields(logrus.Fields{"statement": "CREATE TABLE foo", "rows": 2}).Debug("entering")

	out := buf.String()
	assert.Contains(t, out, "entering")
	assert.Contains(t, out, "statement=CREATE TABLE foo")
	assert.Contains(t, out, "rows=2")
}

func TestNewIsNotASingleton(t *testing.T) {
	a := New("info")
	b := New("info")
	assert.NotSame(t, a, b)
}
