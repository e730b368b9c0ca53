package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"property_report/pkg/core/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestStartReturnsExitCodeOnBadConfig(t *testing.T) {
	t.Setenv("APP_CONFIG", writeConfig(t, "server: [\n"))
	assert.Equal(t, 1, start())
}

func TestStartReturnsExitCodeWhenStartupFails(t *testing.T) {
	// an empty resources directory has no prompt library
	t.Setenv("APP_CONFIG", writeConfig(t, "log:\n  level: error\nresources_dir: "+t.TempDir()+"\n"))
	t.Setenv("LLM_PROVIDER", "stub")
	assert.Equal(t, 1, start())
}

func TestRunFailsWithoutPromptLibrary(t *testing.T) {
	cfg := config.Default()
	cfg.ResourcesDir = t.TempDir()
	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt library")
}
