package configcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/htmltoc/internal/config"
)

func TestRunClear_WithExistingConfig(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "htmltoc", "config.yml")
	require.NoError(t, (&config.Config{Encoding: "utf-8"}).Save(configPath))

	var buf bytes.Buffer
	require.NoError(t, runClear(&buf, configPath, true))
	assert.Contains(t, buf.String(), "Configuration cleared")

	// Verify file is deleted
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunClear_NoConfigFile(t *testing.T) {
	clearEnv(t)

	// Should not error even if file doesn't exist
	var buf bytes.Buffer
	require.NoError(t, runClear(&buf, filepath.Join(t.TempDir(), "config.yml"), true))
	assert.Contains(t, buf.String(), "No config file to remove")
}

func TestRunClear_ReportsActiveEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTMLTOC_FORMAT", "html")

	var buf bytes.Buffer
	require.NoError(t, runClear(&buf, filepath.Join(t.TempDir(), "config.yml"), true))
	assert.Contains(t, buf.String(), "HTMLTOC_FORMAT")
}

func TestRunClear_Idempotent(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yml")

	// Running twice should succeed
	require.NoError(t, runClear(&bytes.Buffer{}, configPath, true))
	require.NoError(t, runClear(&bytes.Buffer{}, configPath, true))
}
