package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLogPathUsesXDGStateHome(t *testing.T) {
	xdgStateHome := t.TempDir()
	t.Setenv("XDG_STATE_HOME", xdgStateHome)
	t.Setenv("HOME", t.TempDir())

	path, err := resolveLogPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdgStateHome, "disappility", "log.jsonl"), path)
}

func TestResolveLogPathFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)

	path, err := resolveLogPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "state", "disappility", "log.jsonl"), path)
}

func TestNewCreatesWritableJSONLogFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	runtime, err := New("info")
	require.NoError(t, err)

	runtime.Logger.Info("unit-test-log", "component", "logging")
	require.NoError(t, runtime.Close())

	contents, err := os.ReadFile(runtime.Path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"msg":"unit-test-log"`)
	require.Contains(t, string(contents), `"component":"logging"`)

	stat, err := os.Stat(runtime.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	runtime, err := New("warn")
	require.NoError(t, err)

	runtime.Logger.Info("suppressed")
	runtime.Logger.Warn("emitted")
	require.NoError(t, runtime.Close())

	contents, err := os.ReadFile(runtime.Path)
	require.NoError(t, err)
	require.NotContains(t, string(contents), "suppressed")
	require.Contains(t, string(contents), "emitted")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"Info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ParseLevel(tt.input), tt.input)
	}
}
