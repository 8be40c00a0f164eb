package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerWritesServiceLog(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger(AppConfig{Name: "event-ticketing", LogPath: dir})
	require.NoError(t, err)

	logger.Info("sweeper started")
	_ = logger.Sync()

	raw, err := os.ReadFile(filepath.Join(dir, "event-ticketing.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"service":"event-ticketing"`)
	assert.Contains(t, string(raw), `"message":"sweeper started"`)
}

func TestInitLoggerDefaultsName(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger(AppConfig{LogPath: dir})
	require.NoError(t, err)
	logger.Info("up")
	_ = logger.Sync()

	_, err = os.Stat(filepath.Join(dir, "event-ticketing.log"))
	assert.NoError(t, err)
}
