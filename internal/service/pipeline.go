package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
)

// safeDeleteExtensions are intermediate container types the pipeline may
// delete after a verified conversion. The installed .mov is never a source,
// so it can never match.
var safeDeleteExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".webm": true,
	".mkv":  true,
}

// minOutputRatio is a cheap truncation heuristic: a converted file smaller
// than a tenth of its source is suspect, so the source is kept.
const minOutputRatio = 10

type Outcome string

const (
	OutcomeInstalled Outcome = "installed"
	OutcomeCancelled Outcome = "cancelled"
)

// Result is what a pipeline run hands back to the CLI.
type Result struct {
	Outcome      Outcome
	AssetName    string
	BackupPath   string
	OutputPath   string
	RefreshCount int
}

// Pipeline wires the full install sequence: fetch, select, backup, gate,
// extend, transcode, install, refresh. One pipeline per run, one subprocess
// outstanding at a time.
type Pipeline struct {
	fetcher    port.VideoFetcher
	transcoder port.Transcoder
	selection  *SelectionFlow
	backup     *BackupManager
	installer  *Installer
	normalize  *Normalizer
	gate       Gate
	outputDir  string
}

func NewPipeline(
	fetcher port.VideoFetcher,
	transcoder port.Transcoder,
	selection *SelectionFlow,
	backup *BackupManager,
	installer *Installer,
	normalize *Normalizer,
	gate Gate,
	outputDir string,
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		transcoder: transcoder,
		selection:  selection,
		backup:     backup,
		installer:  installer,
		normalize:  normalize,
		gate:       gate,
		outputDir:  outputDir,
	}
}

// Run executes one URL-to-wallpaper installation. A user cancel returns a
// Result with OutcomeCancelled and a nil error; every other early exit is a
// stage-tagged fatal error.
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	src, err := p.fetcher.Fetch(ctx, url, p.outputDir)
	if err != nil {
		return nil, domain.Stage("fetch", err, "verify the URL is reachable and yt-dlp is up to date")
	}
	p.normalize.Normalize(src.Path)

	target, err := p.selection.Resolve(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUserCancelled) {
			logger.Info.Printf("cancelled, no files modified")
			return &Result{Outcome: OutcomeCancelled}, nil
		}
		return nil, domain.Stage("select", err, "")
	}

	// No install without a prior successful backup. This ordering is the
	// concurrency-safety discipline for the single target file.
	backupRec, err := p.backup.Backup(*target)
	if err != nil {
		return nil, domain.Stage("backup", err, "check free space and write access to the output directory")
	}

	job := domain.NewConversionJob(*src, target.Name)

	if err := p.convert(ctx, job); err != nil {
		job.FailedAt = domain.StageTranscode
		return nil, err
	}

	refreshCount, err := p.installer.Install(ctx, job, *target)
	if err != nil {
		job.FailedAt = domain.StageInstall
		return nil, domain.Stage("install", err, "rerun with sudo if the wallpaper directory is not writable")
	}

	return &Result{
		Outcome:      OutcomeInstalled,
		AssetName:    target.Name,
		BackupPath:   backupRec.BackupPath,
		OutputPath:   job.OutputPath,
		RefreshCount: refreshCount,
	}, nil
}

// convert runs the gate/extend/transcode sequence, updating job in place.
func (p *Pipeline) convert(ctx context.Context, job *domain.ConversionJob) error {
	duration := job.Source.DurationSeconds
	height := job.Source.HeightPixels

	// The fetcher usually supplies both; probe only when it could not.
	if duration <= 0 || height <= 0 {
		probe, err := p.transcoder.Probe(ctx, job.InputPath)
		if err != nil {
			return domain.Stage("gate", err, "")
		}
		if duration <= 0 {
			duration = probe.DurationSeconds()
		}
		if height <= 0 {
			height = probe.Height()
		}
	}

	if p.gate.BelowQuality(height) {
		logger.Warn.Printf("source is %dp, below the recommended %dp; the wallpaper may look soft", height, p.gate.MinHeight)
	}

	if p.gate.NeedsExtension(duration) {
		minSec := p.gate.MinDuration.Seconds()
		logger.Info.Printf("source runs %s, extending to %s by looping", domain.FormatDuration(duration), domain.FormatDuration(minSec))

		extendedPath := p.intermediatePath(job, "extended", ".mp4")
		if err := p.transcoder.ExtendLoop(ctx, job.InputPath, extendedPath, minSec); err != nil {
			job.FailedAt = domain.StageExtend
			return domain.Stage("extend", err, "")
		}
		p.normalize.Normalize(extendedPath)

		// The short original is fully represented by the extension.
		p.cleanupSource(job.InputPath, extendedPath)
		job.InputPath = extendedPath
		job.Extended = true
	}

	job.OutputPath = filepath.Join(p.outputDir, strings.TrimSuffix(filepath.Base(job.Source.Path), filepath.Ext(job.Source.Path))+"_wallpaper.mov")

	if err := p.transcoder.Transcode(ctx, job.InputPath, job.OutputPath); err != nil {
		return domain.Stage("transcode", err, "check that ffmpeg supports hevc encoding (`ffmpeg -encoders | grep hevc`)")
	}

	if !p.normalize.Normalize(job.OutputPath) {
		logger.Warn.Printf("could not normalize permissions on %s", job.OutputPath)
	}

	p.cleanupSource(job.InputPath, job.OutputPath)
	return nil
}

func (p *Pipeline) intermediatePath(job *domain.ConversionJob, label, ext string) string {
	base := strings.TrimSuffix(filepath.Base(job.Source.Path), filepath.Ext(job.Source.Path))
	return filepath.Join(p.outputDir, fmt.Sprintf("%s_%s_%s%s", base, label, job.ID[:8], ext))
}

// cleanupSource deletes an intermediate source file, but only when the
// derived output looks sane. Safety-biased: on any doubt the source stays,
// because it may be the only playable copy.
func (p *Pipeline) cleanupSource(srcPath, outPath string) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return
	}
	outInfo, err := os.Stat(outPath)
	if err != nil {
		logger.Warn.Printf("keeping %s: derived output missing", srcPath)
		return
	}
	if outInfo.Size() < srcInfo.Size()/minOutputRatio {
		logger.Warn.Printf("keeping %s: output %s suspiciously small next to source %s",
			srcPath, domain.FormatSize(outInfo.Size()), domain.FormatSize(srcInfo.Size()))
		return
	}
	if !safeDeleteExtensions[strings.ToLower(filepath.Ext(srcPath))] {
		logger.Debug.Printf("keeping %s: not a known intermediate type", srcPath)
		return
	}

	if err := os.Remove(srcPath); err != nil {
		if os.IsPermission(err) {
			// One retry after forcing the file writable.
			_ = os.Chmod(srcPath, 0o644)
			if err = os.Remove(srcPath); err == nil {
				logger.Debug.Printf("removed intermediate %s after chmod", srcPath)
				return
			}
		}
		logger.Warn.Printf("could not remove intermediate %s: %v", srcPath, err)
		return
	}
	logger.Debug.Printf("removed intermediate %s", srcPath)
}
