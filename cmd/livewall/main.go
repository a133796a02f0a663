package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"livewall/config"
	"livewall/internal/adapter/converter/ffmpeg"
	"livewall/internal/adapter/fetch/ytdlp"
	"livewall/internal/adapter/macos"
	sqlitestore "livewall/internal/adapter/storage/sqlite"
	"livewall/internal/adapter/terminal"
	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	urlFlag := flag.String("url", "", "video URL to turn into a live wallpaper (prompted when omitted)")
	fixPerms := flag.Bool("fix-permissions", false, "repair ownership/permissions in the wallpaper directory and exit")
	history := flag.Bool("history", false, "print recent installs and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("load config: %v", err)
		return 1
	}

	// SIGINT/SIGTERM cancel the context; every subprocess runs under it
	// and is asked to terminate gracefully rather than being orphaned.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	normalizer := service.NewNormalizer()

	if *fixPerms {
		repaired, failed := normalizer.RepairDir(cfg.WallpaperDir)
		logger.Info.Printf("permission repair: %d repaired, %d failed", repaired, failed)
		if failed > 0 {
			logger.Warn.Printf("some files could not be repaired; rerun with sudo")
			return 1
		}
		return 0
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Error.Printf("create output directory: %v", err)
		return 1
	}

	ledger, err := sqlitestore.NewLedger(cfg.OutputDir)
	if err != nil {
		logger.Error.Printf("open history ledger: %v", err)
		return 1
	}
	defer func() { _ = ledger.Close() }()

	if *history {
		installs, err := ledger.ListInstalls(20)
		if err != nil {
			logger.Error.Printf("list installs: %v", err)
			return 1
		}
		if len(installs) == 0 {
			fmt.Println("no installs recorded yet")
			return 0
		}
		for _, rec := range installs {
			fmt.Printf("%s  %-30s  %s  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), rec.AssetName,
				domain.FormatSize(rec.SizeBytes), logger.Sanitize(rec.Title))
		}
		return 0
	}

	prompter := terminal.NewPrompter()

	url := *urlFlag
	if url == "" {
		url, err = prompter.Ask("Video URL:")
		if err != nil || url == "" {
			logger.Error.Printf("a video URL is required")
			return 1
		}
	}

	transcoder := ffmpeg.NewTranscoder(ffmpeg.Options{
		Width:          cfg.TargetWidth,
		Height:         cfg.TargetHeight,
		FPS:            cfg.TargetFPS,
		Bitrate:        cfg.Bitrate,
		MaxRate:        cfg.MaxRate,
		BufSize:        cfg.BufSize,
		SoftwarePreset: cfg.SoftwarePreset,
	})
	fetcher := ytdlp.NewFetcher(cfg.TargetHeight)
	refresher := macos.NewRefresher()
	scanner := service.NewScanner(cfg.WallpaperDir)
	selection := service.NewSelectionFlow(scanner, prompter, refresher, cfg.SeedInterval, cfg.SeedAttempts)
	backup := service.NewBackupManager(cfg.BackupDir(), ledger, normalizer)
	installer := service.NewInstaller(ledger, refresher, normalizer)
	gate := service.Gate{MinHeight: cfg.MinHeight, MinDuration: cfg.MinDuration}

	pipeline := service.NewPipeline(fetcher, transcoder, selection, backup, installer, normalizer, gate, cfg.OutputDir)

	result, err := pipeline.Run(ctx, url)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn.Printf("interrupted, shutting down")
			return 1
		}
		logger.Error.Printf("%v", err)
		if hint := domain.HintOf(err); hint != "" {
			logger.Info.Printf("hint: %s", hint)
		}
		return 1
	}

	if result.Outcome == service.OutcomeCancelled {
		fmt.Println("No files were modified.")
		return 0
	}

	fmt.Printf("Installed %q (backup at %s). If the wallpaper still shows a static frame, reselect it in System Settings.\n",
		result.AssetName, result.BackupPath)
	return 0
}
