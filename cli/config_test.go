package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig(newViper(), "")
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, 100, cfg.Log.MaxSize)
		assert.Equal(t, 0, cfg.PageSize)
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, "tabula.yaml", "log:\n  level: debug\n  file: /var/log/tabula.log\npage_size: 25\n")
		cfg, err := LoadConfig(newViper(), path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "/var/log/tabula.log", cfg.Log.File)
		assert.Equal(t, 3, cfg.Log.MaxBackups)
		assert.Equal(t, 25, cfg.PageSize)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("TABULA_LOG_LEVEL", "error")
		path := writeFile(t, "tabula.yaml", "log:\n  level: debug\n")
		cfg, err := LoadConfig(newViper(), path)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Log.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(newViper(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("negative page size", func(t *testing.T) {
		t.Setenv("TABULA_PAGE_SIZE", "-1")
		_, err := LoadConfig(newViper(), "")
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(LogConfig{Level: "info"}, &buf)
		require.NoError(t, err)
		logger.Debug("hidden")
		logger.Info("table built")
		assert.Contains(t, buf.String(), "INFO")
		assert.Contains(t, buf.String(), "table built")
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(LogConfig{Level: "debug", Format: "json"}, &buf)
		require.NoError(t, err)
		logger.Debug("recomputed")
		assert.Contains(t, buf.String(), `"msg":"recomputed"`)
	})

	t.Run("file sink", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tabula.log")
		var buf bytes.Buffer
		logger, err := NewLogger(LogConfig{Level: "info", File: path, MaxSize: 1}, &buf)
		require.NoError(t, err)
		logger.Info("written to both")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"written to both"`)
		assert.Contains(t, buf.String(), "written to both")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := NewLogger(LogConfig{Level: "loud"}, &bytes.Buffer{})
		assert.Error(t, err)
		_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
