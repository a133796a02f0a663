package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
)

// backupTimestampLayout is filesystem-safe (no colons, sorts lexically).
const backupTimestampLayout = "2006-01-02_15-04-05"

// BackupManager copies an asset aside before it gets overwritten. A failed
// copy aborts the whole replace: there is no install without a backup.
type BackupManager struct {
	backupDir string
	ledger    port.Ledger
	normalize *Normalizer
	now       func() time.Time
}

func NewBackupManager(backupDir string, ledger port.Ledger, normalize *Normalizer) *BackupManager {
	return &BackupManager{
		backupDir: backupDir,
		ledger:    ledger,
		normalize: normalize,
		now:       time.Now,
	}
}

// Backup copies asset into the backup root under a timestamped name and
// records it in the ledger. Only the file copy is correctness-critical;
// normalization and ledger failures degrade to warnings.
func (b *BackupManager) Backup(asset domain.WallpaperAsset) (*domain.BackupRecord, error) {
	if err := os.MkdirAll(b.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create backup root: %v", domain.ErrBackupFailed, err)
	}

	ts := b.now()
	name := fmt.Sprintf("%s_backup_%s.mov", asset.BaseName(), ts.Format(backupTimestampLayout))
	backupPath := filepath.Join(b.backupDir, name)

	// Backups are never overwritten. Two replacements of the same asset
	// within one second get distinct names.
	for seq := 1; ; seq++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		backupPath = filepath.Join(b.backupDir, fmt.Sprintf("%s_backup_%s_%d.mov", asset.BaseName(), ts.Format(backupTimestampLayout), seq))
	}

	if err := copyFile(asset.Path, backupPath); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackupFailed, err)
	}

	if !b.normalize.Normalize(backupPath) {
		logger.Warn.Printf("could not normalize permissions on backup %s", backupPath)
	}

	rec := &domain.BackupRecord{
		SourceAssetName: asset.Name,
		BackupPath:      backupPath,
		SizeBytes:       asset.SizeBytes,
		CreatedAt:       ts.UTC(),
	}
	if sum, err := fileChecksum(backupPath); err == nil {
		rec.Checksum = sum
	} else {
		logger.Warn.Printf("checksum backup %s: %v", backupPath, err)
	}

	if b.ledger != nil {
		if err := b.ledger.RecordBackup(rec); err != nil {
			logger.Warn.Printf("record backup in ledger: %v", err)
		}
	}

	logger.Info.Printf("backed up %s -> %s", asset.Name, backupPath)
	return rec, nil
}
