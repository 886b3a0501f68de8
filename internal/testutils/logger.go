// Package testutils contains helpers shared by the package tests.
package testutils

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

type testOutput struct{ testing.TB }

func (to testOutput) Write(p []byte) (n int, err error) {
	to.Logf("%s", p)
	return len(p), nil
}

// NewLogger returns a logger that writes through t.Logf. A nil t discards
// everything.
func NewLogger(t testing.TB) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	if t == nil {
		l.SetOutput(io.Discard)
	} else {
		l.SetOutput(testOutput{t})
	}
	return l
}

// NewLoggerWithHook calls NewLogger and attaches a hook recording the given
// levels, or every level when none are given.
func NewLoggerWithHook(t testing.TB, levels ...logrus.Level) (logrus.FieldLogger, *LogHook) {
	l := NewLogger(t)
	hook := &LogHook{levels: levels}
	if len(hook.levels) == 0 {
		hook.levels = logrus.AllLevels
	}
	l.AddHook(hook)
	return l, hook
}

// LogHook keeps every entry it is fired with.
type LogHook struct {
	levels  []logrus.Level
	mu      sync.Mutex
	entries []logrus.Entry
}

var _ logrus.Hook = &LogHook{}

// Levels returns the hooked levels.
func (h *LogHook) Levels() []logrus.Level {
	return h.levels
}

// Fire records e.
func (h *LogHook) Fire(e *logrus.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, *e)
	return nil
}

// Drain returns the recorded entries and forgets them.
func (h *LogHook) Drain() []logrus.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	res := h.entries
	h.entries = nil
	return res
}

// LogContains reports whether entries has a message at level containing s.
func LogContains(entries []logrus.Entry, level logrus.Level, s string) bool {
	for _, e := range entries {
		if e.Level == level && strings.Contains(e.Message, s) {
			return true
		}
	}
	return false
}
