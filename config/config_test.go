package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultWallpaperDir, cfg.WallpaperDir)
	assert.Equal(t, 2160, cfg.MinHeight)
	assert.Equal(t, 180*time.Second, cfg.MinDuration)
	assert.Equal(t, 240, cfg.TargetFPS)
	assert.Equal(t, 3840, cfg.TargetWidth)
	assert.Equal(t, "50M", cfg.Bitrate)
	assert.Equal(t, 3*time.Second, cfg.SeedInterval)
	assert.Equal(t, 20, cfg.SeedAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIVEWALL_WALLPAPER_DIR", "/tmp/wall")
	t.Setenv("LIVEWALL_OUTPUT_DIR", "/tmp/out")
	t.Setenv("LIVEWALL_MIN_DURATION_SEC", "90")
	t.Setenv("LIVEWALL_SW_PRESET", "medium")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wall", cfg.WallpaperDir)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 90*time.Second, cfg.MinDuration)
	assert.Equal(t, "medium", cfg.SoftwarePreset)
	assert.Equal(t, filepath.Join("/tmp/out", "wallpaper_backups"), cfg.BackupDir())
}

func TestLoad_RejectsGarbageInt(t *testing.T) {
	t.Setenv("LIVEWALL_MIN_HEIGHT", "tall")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIVEWALL_MIN_HEIGHT")
}
