package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_FiltersAndSortsByRecency(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "old.mov", []byte("old"), 3*time.Hour)
	writeAsset(t, dir, "newest.mp4", []byte("newest"), 1*time.Hour)
	writeAsset(t, dir, "middle.mov", []byte("middle"), 2*time.Hour)
	writeAsset(t, dir, "notes.txt", []byte("ignored"), 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.mov"), 0o755))

	assets, err := NewScanner(dir).Scan()
	require.NoError(t, err)

	require.Len(t, assets, 3)
	assert.Equal(t, "newest.mp4", assets[0].Name)
	assert.Equal(t, "middle.mov", assets[1].Name)
	assert.Equal(t, "old.mov", assets[2].Name)
	assert.Equal(t, int64(6), assets[0].SizeBytes)
	assert.Equal(t, filepath.Join(dir, "newest.mp4"), assets[0].Path)
}

func TestScan_MissingDirectoryIsEmptyAndCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet", "4KSDR240FPS")

	assets, err := NewScanner(dir).Scan()
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.DirExists(t, dir, "canonical target must be created when missing")
}

func TestScan_UppercaseExtensions(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "SHOUTING.MOV", []byte("x"), 0)

	assets, err := NewScanner(dir).Scan()
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "SHOUTING.MOV", assets[0].Name)
}
