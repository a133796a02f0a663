package port

import "livewall/internal/domain"

// Ledger persists backup and install history. Services treat ledger write
// failures as warnings; the filesystem copy is the correctness anchor.
type Ledger interface {
	RecordBackup(rec *domain.BackupRecord) error
	RecordInstall(rec *domain.InstallRecord) error
	ListBackups(assetName string) ([]domain.BackupRecord, error)
	ListInstalls(limit int) ([]domain.InstallRecord, error)
	Close() error
}
