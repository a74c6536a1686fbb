package test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// TestLogger writes log lines through testing.T, so they are printed only for failed
// (or verbose) tests.
type TestLogger struct {
	mtx sync.Mutex
	T   *testing.T
}

// NewTestLogger returns a TestLogger bound to t.
func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{T: t}
}

func (t *TestLogger) Debug(msg string, keyvals ...interface{}) {
	t.T.Helper()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.T.Log(append([]interface{}{"DEBUG: " + msg}, keyvals...)...)
}

func (t *TestLogger) Info(msg string, keyvals ...interface{}) {
	t.T.Helper()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.T.Log(append([]interface{}{"INFO:  " + msg}, keyvals...)...)
}

func (t *TestLogger) Error(msg string, keyvals ...interface{}) {
	t.T.Helper()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.T.Log(append([]interface{}{"ERROR: " + msg}, keyvals...)...)
}

// MockLogger records log lines for inspection.
type MockLogger struct {
	mtx                             sync.Mutex
	DebugLines, InfoLines, ErrLines []string
}

func (t *MockLogger) Debug(msg string, keyvals ...interface{}) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.DebugLines = append(t.DebugLines, fmt.Sprint(append([]interface{}{msg}, keyvals...)...))
}

func (t *MockLogger) Info(msg string, keyvals ...interface{}) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.InfoLines = append(t.InfoLines, fmt.Sprint(append([]interface{}{msg}, keyvals...)...))
}

func (t *MockLogger) Error(msg string, keyvals ...interface{}) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.ErrLines = append(t.ErrLines, fmt.Sprint(append([]interface{}{msg}, keyvals...)...))
}

// ErrorsContaining returns the recorded error lines that contain substr.
func (t *MockLogger) ErrorsContaining(substr string) []string {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	var lines []string
	for _, l := range t.ErrLines {
		if strings.Contains(l, substr) {
			lines = append(lines, l)
		}
	}
	return lines
}
