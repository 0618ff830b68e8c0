package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		" DEBUG ": zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNew_WritesJSONToFileAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seatlock.log")
	logger, cleanup, err := New(Options{File: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("seat refresh failed", zap.Int("consecutive_failures", 2))
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"seat refresh failed"`)
	require.Contains(t, out, `"consecutive_failures":2`)
	require.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNew_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatlock.log")
	logger, cleanup, err := New(Options{File: path, Format: "console"})
	require.NoError(t, err)
	logger.Info("push channel connected")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "push channel connected")
	require.NotContains(t, string(data), `"msg"`)
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	require.Error(t, err)
	_, _, err = New(Options{Level: "chatty"})
	require.Error(t, err)
}
