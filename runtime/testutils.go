package runtime

import (
	"bytes"
	"strings"
	"testing"
)

// QuietTest silences all logging until the returned function is called.
func QuietTest(t *testing.T) func() {
	t.Helper()
	oldLevel := GetLogLevel()
	SetLogLevel(LogLevelOff)
	return func() {
		SetLogLevel(oldLevel)
	}
}

// CaptureLog captures log output during test execution
// Returns the captured output and a cleanup function
func CaptureLog(t *testing.T, level LogLevel) (*bytes.Buffer, func()) {
	t.Helper()
	buffer := &bytes.Buffer{}
	old := SetLogger(NewLogger(buffer, level))
	return buffer, func() {
		SetLogger(old)
	}
}

// VerboseTest enables debug logging if test is run with -v flag
func VerboseTest(t *testing.T) func() {
	t.Helper()
	oldLevel := GetLogLevel()
	if testing.Verbose() {
		SetLogLevel(LogLevelDebug)
	}
	return func() {
		SetLogLevel(oldLevel)
	}
}

// AssertLogContains checks that logs contain expected message
func AssertLogContains(t *testing.T, logs string, expected string) {
	t.Helper()
	if !strings.Contains(logs, expected) {
		t.Errorf("Expected log message not found.\nExpected: %s\nActual logs:\n%s", expected, logs)
	}
}
