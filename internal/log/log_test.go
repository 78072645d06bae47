package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	l.Debugf("hidden %d", 1)
	l.Infof("catalogue has %d services", 12)
	l.Warnf("careful")
	l.Errorf("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO: ")
	assert.Contains(t, out, "catalogue has 12 services")
	assert.Contains(t, out, "WARN: ")
	assert.Contains(t, out, "ERROR: boom")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(LevelDebug, &buf).Debugf("plugin %s", "leet")
	assert.Contains(t, buf.String(), "DEBUG: ")
	assert.Contains(t, buf.String(), "plugin leet")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Infof("x") })
	assert.Equal(t, LevelError, l.Level())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"":        LevelInfo,
		"info":    LevelInfo,
		"DEBUG":   LevelDebug,
		"warning": LevelWarn,
		"error":   LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
