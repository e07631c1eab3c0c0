// Package logging builds the structured logger used across storage,
// catalog and executor code. Unlike the teacher it does not expose a
// package-level global: New returns a logger the caller threads through
// an Environment, matching §9's "no singletons" design note.
package logging

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// callerFormatter renders "HH:MM:SS [LEVEL] (file:line) message key=value...",
// the same shape as the teacher's CustomFormatter, minus the package-global
// state, plus a trailing rendering of WithField/WithFields data so that
// structured fields are actually visible in the log stream rather than
// silently dropped.
type callerFormatter struct {
	TimestampFormat string
}

func (f *callerFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.Format(f.TimestampFormat)
	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	caller := findCaller()
	line := ts + " [" + level + "] (" + caller + ") " + entry.Message
	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, entry.Data[k])
		}
	}
	line += "\n"
	return []byte(line), nil
}

func findCaller() string {
	for i := 2; i < 20; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "sirupsen/logrus") || strings.HasSuffix(file, "/logging/logging.go") {
			continue
		}
		short := file
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			short = file[idx+1:]
		}
		return short + ":" + itoa(line)
	}
	return "unknown:0"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ParseLevel maps a config string onto a logrus.Level, defaulting to Info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
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

// New builds a *logrus.Logger writing to stderr with the caller-annotated
// formatter, at the requested level.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&callerFormatter{TimestampFormat: "15:04:05"})
	l.SetLevel(ParseLevel(level))
	l.SetOutput(os.Stderr)
	return l
}
