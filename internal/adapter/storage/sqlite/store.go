package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"livewall/internal/domain"
	"livewall/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Ledger is the SQLite-backed backup/install history. One writer, WAL mode.
type Ledger struct {
	db *sql.DB
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA busy_timeout = 5000",
				"PRAGMA synchronous = NORMAL",
				"PRAGMA foreign_keys = ON",
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewLedger(dataDir string) (*Ledger, error) {
	registerHook()

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// WAL allows concurrent readers but SQLite has a single writer.
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) RecordBackup(rec *domain.BackupRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := l.db.Exec(
		`INSERT INTO backups (source_asset_name, backup_path, checksum, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.SourceAssetName, rec.BackupPath, rec.Checksum, rec.SizeBytes, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert backup record: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

func (l *Ledger) RecordInstall(rec *domain.InstallRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := l.db.Exec(
		`INSERT INTO installs (asset_name, source_url, title, checksum, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.AssetName, rec.SourceURL, rec.Title, rec.Checksum, rec.SizeBytes, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert install record: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

func (l *Ledger) ListBackups(assetName string) ([]domain.BackupRecord, error) {
	rows, err := l.db.Query(
		`SELECT id, source_asset_name, backup_path, checksum, size_bytes, created_at
		 FROM backups WHERE source_asset_name = ? ORDER BY created_at DESC`,
		assetName,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.BackupRecord
	for rows.Next() {
		var rec domain.BackupRecord
		if err := rows.Scan(&rec.ID, &rec.SourceAssetName, &rec.BackupPath, &rec.Checksum, &rec.SizeBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (l *Ledger) ListInstalls(limit int) ([]domain.InstallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.Query(
		`SELECT id, asset_name, source_url, title, checksum, size_bytes, created_at
		 FROM installs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list installs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.InstallRecord
	for rows.Next() {
		var rec domain.InstallRecord
		if err := rows.Scan(&rec.ID, &rec.AssetName, &rec.SourceURL, &rec.Title, &rec.Checksum, &rec.SizeBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan install record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ port.Ledger = (*Ledger)(nil)
