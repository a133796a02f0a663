package service

import (
	"context"
	"fmt"
	"os"

	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
)

// statFunc is replaceable so tests can force a verification failure.
var statFunc = os.Stat

// Installer performs the destructive replace: the converted file is copied
// over the target asset's path, preserving the filename the OS uses as the
// asset's identity.
type Installer struct {
	ledger    port.Ledger
	refresher port.Refresher
	normalize *Normalizer
}

func NewInstaller(ledger port.Ledger, refresher port.Refresher, normalize *Normalizer) *Installer {
	return &Installer{ledger: ledger, refresher: refresher, normalize: normalize}
}

// Install overwrites target with the converted file and verifies the result
// by re-reading the target path. A refresh failure never downgrades a
// successful install.
func (ins *Installer) Install(ctx context.Context, job *domain.ConversionJob, target domain.WallpaperAsset) (refreshCount int, err error) {
	if err := copyFile(job.OutputPath, target.Path); err != nil {
		return 0, fmt.Errorf("install %s: %w", target.Name, err)
	}

	info, err := statFunc(target.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s vanished after copy: %v", domain.ErrInstallVerificationFailed, target.Name, err)
	}

	if !ins.normalize.Normalize(target.Path) {
		logger.Warn.Printf("could not normalize permissions on %s", target.Path)
	}

	rec := &domain.InstallRecord{
		AssetName: target.Name,
		SourceURL: job.Source.URL,
		Title:     job.Source.Title,
		SizeBytes: info.Size(),
	}
	if sum, cErr := fileChecksum(target.Path); cErr == nil {
		rec.Checksum = sum
	}
	if ins.ledger != nil {
		if lErr := ins.ledger.RecordInstall(rec); lErr != nil {
			logger.Warn.Printf("record install in ledger: %v", lErr)
		}
	}

	logger.Info.Printf("installed %s (%s)", target.Name, domain.FormatSize(info.Size()))

	if ins.refresher != nil {
		refreshCount = ins.refresher.Refresh(ctx)
	}
	return refreshCount, nil
}
