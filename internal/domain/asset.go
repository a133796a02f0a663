package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WallpaperAsset is a video file inside the OS-managed wallpaper directory.
// The OS identifies the active wallpaper by filename, so identity is the
// filename, never the byte content: an install overwrites bytes in place and
// the asset's identity persists.
type WallpaperAsset struct {
	Path       string
	Name       string
	SizeBytes  int64
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// BaseName returns the asset name without its extension.
func (a WallpaperAsset) BaseName() string {
	return strings.TrimSuffix(a.Name, filepath.Ext(a.Name))
}

// SourceVideo is a locally available media file awaiting transformation.
type SourceVideo struct {
	Path            string
	Title           string
	URL             string
	DurationSeconds float64
	HeightPixels    int
	Container       string
}

// BackupRecord is a point-in-time copy of a WallpaperAsset, taken right
// before the asset is overwritten. Records are never overwritten and never
// auto-deleted.
type BackupRecord struct {
	ID              int64
	SourceAssetName string
	BackupPath      string
	Checksum        string
	SizeBytes       int64
	CreatedAt       time.Time
}

// InstallRecord is one successful replacement of a wallpaper asset.
type InstallRecord struct {
	ID        int64
	AssetName string
	SourceURL string
	Title     string
	Checksum  string
	SizeBytes int64
	CreatedAt time.Time
}

type JobStage string

const (
	StageFetch     JobStage = "fetch"
	StageGate      JobStage = "gate"
	StageExtend    JobStage = "extend"
	StageTranscode JobStage = "transcode"
	StageBackup    JobStage = "backup"
	StageInstall   JobStage = "install"
	StageRefresh   JobStage = "refresh"
)

// ConversionJob is the transient working state for one source-to-asset
// transformation. It is never persisted; the ledger records only the
// terminal backup/install facts.
type ConversionJob struct {
	ID         string
	Source     SourceVideo
	Extended   bool
	InputPath  string
	OutputPath string
	TargetName string
	StartedAt  time.Time
	FailedAt   JobStage
}

func NewConversionJob(src SourceVideo, targetName string) *ConversionJob {
	return &ConversionJob{
		ID:         uuid.NewString(),
		Source:     src,
		InputPath:  src.Path,
		TargetName: targetName,
		StartedAt:  time.Now(),
	}
}
