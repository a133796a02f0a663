package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults target the macOS "Sonoma" live wallpaper asset store: 4K SDR
// 240 fps HEVC assets managed by idleassetsd.
const (
	defaultWallpaperDir = "/Library/Application Support/com.apple.idleassetsd/Customer/4KSDR240FPS"
	backupDirName       = "wallpaper_backups"
)

type Config struct {
	// WallpaperDir is the OS-managed asset directory. Filenames inside it
	// are opaque identifiers assigned by the OS.
	WallpaperDir string

	// OutputDir holds downloads, intermediates, backups and the history db.
	OutputDir string

	// Quality/duration policy. MinHeight is warning-only; a source shorter
	// than MinDuration is loop-extended before transcoding.
	MinHeight   int
	MinDuration time.Duration

	// Target encode parameters for the wallpaper asset.
	TargetWidth    int
	TargetHeight   int
	TargetFPS      int
	Bitrate        string
	MaxRate        string
	BufSize        string
	SoftwarePreset string

	// Seed polling: how long to wait for the user to create the first
	// asset through System Settings.
	SeedInterval time.Duration
	SeedAttempts int
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	minHeight, err := intEnv("LIVEWALL_MIN_HEIGHT", 2160)
	if err != nil {
		return nil, err
	}
	minDuration, err := intEnv("LIVEWALL_MIN_DURATION_SEC", 180)
	if err != nil {
		return nil, err
	}
	fps, err := intEnv("LIVEWALL_TARGET_FPS", 240)
	if err != nil {
		return nil, err
	}
	seedAttempts, err := intEnv("LIVEWALL_SEED_ATTEMPTS", 20)
	if err != nil {
		return nil, err
	}
	seedIntervalSec, err := intEnv("LIVEWALL_SEED_INTERVAL_SEC", 3)
	if err != nil {
		return nil, err
	}

	return &Config{
		WallpaperDir:   getEnv("LIVEWALL_WALLPAPER_DIR", defaultWallpaperDir),
		OutputDir:      getEnv("LIVEWALL_OUTPUT_DIR", filepath.Join(home, "Movies", "livewall")),
		MinHeight:      minHeight,
		MinDuration:    time.Duration(minDuration) * time.Second,
		TargetWidth:    3840,
		TargetHeight:   2160,
		TargetFPS:      fps,
		Bitrate:        getEnv("LIVEWALL_BITRATE", "50M"),
		MaxRate:        getEnv("LIVEWALL_MAXRATE", "60M"),
		BufSize:        getEnv("LIVEWALL_BUFSIZE", "120M"),
		SoftwarePreset: getEnv("LIVEWALL_SW_PRESET", "fast"),
		SeedInterval:   time.Duration(seedIntervalSec) * time.Second,
		SeedAttempts:   seedAttempts,
	}, nil
}

// BackupDir is the dedicated backup root under the output directory.
func (c *Config) BackupDir() string {
	return filepath.Join(c.OutputDir, backupDirName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
