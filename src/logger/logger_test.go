package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	prev, out, flags := slog.Default(), log.Writer(), log.Flags()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(out)
		log.SetFlags(flags)
	})
}

func TestSetDefault(t *testing.T) {
	t.Run("package slog follows format", func(t *testing.T) {
		restoreDefault(t)
		var out bytes.Buffer
		NewWithWriter(&out, int(slog.LevelInfo), "json").SetDefault()

		slog.Error("request failed", "path", "/api/login")

		var line map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &line))
		assert.Equal(t, "ERROR", line["level"])
		assert.Equal(t, "request failed", line["msg"])
		assert.Equal(t, "/api/login", line["path"])
	})

	t.Run("package slog follows level", func(t *testing.T) {
		restoreDefault(t)
		var out bytes.Buffer
		NewWithWriter(&out, int(slog.LevelWarn), "text").SetDefault()

		slog.Info("hidden")
		slog.Warn("shown")

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "msg=shown")
	})

	t.Run("standard log is routed too", func(t *testing.T) {
		restoreDefault(t)
		var out bytes.Buffer
		NewWithWriter(&out, int(slog.LevelInfo), "text").SetDefault()

		log.Println("✅ Redis connected successfully")

		assert.Contains(t, out.String(), "level=INFO")
		assert.Contains(t, out.String(), "Redis connected successfully")
	})
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("discarded", "k", "v")
	})
}

func TestFatalExits(t *testing.T) {
	if os.Getenv("LOGGER_FATAL_CHILD") == "1" {
		New(int(slog.LevelInfo), "json").Fatal("store unavailable", "driver", "mongo")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalExits$")
	cmd.Env = append(os.Environ(), "LOGGER_FATAL_CHILD=1")
	out, err := cmd.Output()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), `"msg":"store unavailable"`)
	assert.Contains(t, string(out), `"driver":"mongo"`)
}
