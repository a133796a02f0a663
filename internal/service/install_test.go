package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livewall/internal/domain"
)

func TestInstall_PreservesFilenameAndReplacesBytes(t *testing.T) {
	wallDir := t.TempDir()
	outDir := t.TempDir()
	targetPath := writeAsset(t, wallDir, "Sonoma Horizon.mov", []byte("old-bytes"), time.Hour)

	converted := filepath.Join(outDir, "new_wallpaper.mov")
	require.NoError(t, os.WriteFile(converted, []byte("new-hevc-bytes"), 0o644))

	ledger := &memLedger{}
	refresher := &fakeRefresher{}
	ins := NewInstaller(ledger, refresher, userNormalizer())

	src := domain.SourceVideo{Title: "Ocean", URL: "https://yt/x"}
	job := domain.NewConversionJob(src, "Sonoma Horizon.mov")
	job.OutputPath = converted

	target := domain.WallpaperAsset{Path: targetPath, Name: "Sonoma Horizon.mov"}
	count, err := ins.Install(context.Background(), job, target)
	require.NoError(t, err)

	entries, err := os.ReadDir(wallDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Sonoma Horizon.mov", entries[0].Name(), "filename identity must survive the replace")
	assert.Equal(t, []byte("new-hevc-bytes"), fileContent(t, targetPath))

	assert.Equal(t, 1, refresher.refreshCalls)
	assert.Equal(t, 2, count)

	installs, err := ledger.ListInstalls(10)
	require.NoError(t, err)
	require.Len(t, installs, 1)
	assert.Equal(t, "Sonoma Horizon.mov", installs[0].AssetName)
	assert.Equal(t, "Ocean", installs[0].Title)
	assert.NotEmpty(t, installs[0].Checksum)
}

func TestInstall_VerificationFailure(t *testing.T) {
	wallDir := t.TempDir()
	outDir := t.TempDir()
	targetPath := writeAsset(t, wallDir, "a.mov", []byte("old"), 0)

	converted := filepath.Join(outDir, "c.mov")
	require.NoError(t, os.WriteFile(converted, []byte("new"), 0o644))

	orig := statFunc
	statFunc = func(string) (os.FileInfo, error) { return nil, errors.New("stat: transport endpoint not connected") }
	defer func() { statFunc = orig }()

	refresher := &fakeRefresher{}
	ins := NewInstaller(&memLedger{}, refresher, userNormalizer())
	job := domain.NewConversionJob(domain.SourceVideo{}, "a.mov")
	job.OutputPath = converted

	_, err := ins.Install(context.Background(), job, domain.WallpaperAsset{Path: targetPath, Name: "a.mov"})
	require.ErrorIs(t, err, domain.ErrInstallVerificationFailed)
	assert.Zero(t, refresher.refreshCalls, "no refresh after a failed install")
}
