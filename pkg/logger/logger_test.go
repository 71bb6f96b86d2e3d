package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/selfheal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestL_BeforeInitIsNop(t *testing.T) {
	ResetForTest()
	l := L()
	require.NotNil(t, l)
	l.Info("dropped")
}

func TestInitWithWriter_Console(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	require.NoError(t, InitWithWriter(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf)))

	Info("trying backup strategy: %s", "id=login-button")
	Debug("filtered out")

	out := buf.String()
	assert.Contains(t, out, "trying backup strategy: id=login-button")
	assert.Contains(t, out, `"logger":"selfheal"`)
	assert.NotContains(t, out, "filtered out")
}

func TestInitWithWriter_InvalidLevel(t *testing.T) {
	ResetForTest()
	err := InitWithWriter(config.LogConfig{Level: "loud"}, zapcore.AddSync(io.Discard))
	assert.Error(t, err)
}

func TestInitWithWriter_File(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	path := filepath.Join(t.TempDir(), "selfheal.log")
	cfg := config.LogConfig{Level: "debug", Format: "console", File: path, MaxSizeMB: 1}
	require.NoError(t, InitWithWriter(cfg, zapcore.AddSync(io.Discard)))

	Warn("locator failed: %s", "css selector=#x")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "locator failed: css selector=#x")
	assert.Contains(t, string(data), `"level":"WARN"`)
}

func TestNamed(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	require.NoError(t, InitWithWriter(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf)))

	Named("healing").Info("hello")
	assert.Contains(t, buf.String(), `"logger":"selfheal.healing"`)
}
