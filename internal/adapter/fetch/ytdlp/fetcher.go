package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
	"livewall/internal/retry"
)

const (
	defaultPath    = "yt-dlp"
	defaultTimeout = 30 * time.Minute
)

// Runner executes one yt-dlp subprocess. Replaceable in tests.
type Runner func(ctx context.Context, name string, args []string) (stdout, stderr string, exitCode int, err error)

// Fetcher downloads a single video with yt-dlp.
type Fetcher struct {
	// Path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout bounds a single yt-dlp invocation.
	Timeout time.Duration

	// MaxHeight caps the requested variant; the format selector falls back
	// gracefully when nothing at that height exists.
	MaxHeight int

	RetryConfig *retry.Config

	run Runner
}

func NewFetcher(maxHeight int) *Fetcher {
	cfg := retry.DefaultConfig()
	return &Fetcher{
		Path:        defaultPath,
		Timeout:     defaultTimeout,
		MaxHeight:   maxHeight,
		RetryConfig: &cfg,
		run:         execRunner,
	}
}

// metadata is the subset of yt-dlp's -J output the pipeline needs.
type metadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Height   int     `json:"height"`
	Ext      string  `json:"ext"`
}

// Fetch probes the URL, downloads the best variant at or below MaxHeight into
// destDir, and returns the local file with its metadata. Transient failures
// retry with backoff; "video unavailable" and bad URLs are permanent.
func (f *Fetcher) Fetch(ctx context.Context, url, destDir string) (*domain.SourceVideo, error) {
	if err := f.checkInstalled(ctx); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	cfg := retry.DefaultConfig()
	if f.RetryConfig != nil {
		cfg = *f.RetryConfig
	}

	var meta metadata
	err := retry.Do(ctx, cfg, nil, func(ctx context.Context) error {
		m, err := f.probe(ctx, url)
		if err != nil {
			return err
		}
		meta = *m
		return nil
	})
	if err != nil {
		return nil, err
	}

	quality := fmt.Sprintf("%dp", meta.Height)
	if meta.Height == 0 {
		quality = "best"
	}
	base := fmt.Sprintf("%s_%s", sanitizeTitle(meta.Title), quality)
	outPath := filepath.Join(destDir, base+".mp4")

	logger.Info.Printf("downloading %q (%s, %s)", logger.Sanitize(meta.Title), quality, domain.FormatDuration(meta.Duration))

	err = retry.Do(ctx, cfg, nil, func(ctx context.Context) error {
		return f.download(ctx, url, outPath)
	})
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(outPath); err != nil {
		return nil, fmt.Errorf("%w: download reported success but %s is missing", domain.ErrOutputMissing, outPath)
	}

	return &domain.SourceVideo{
		Path:            outPath,
		Title:           meta.Title,
		URL:             url,
		DurationSeconds: meta.Duration,
		HeightPixels:    meta.Height,
		Container:       "mp4",
	}, nil
}

func (f *Fetcher) probe(ctx context.Context, url string) (*metadata, error) {
	args := []string{
		"-J",
		"--no-warnings",
		"--no-playlist",
		"-f", f.formatSelector(),
		url,
	}
	stdout, stderr, code, err := f.invoke(ctx, args)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, classifyFailure(stderr)
	}

	var meta metadata
	if err := json.Unmarshal([]byte(stdout), &meta); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return &meta, nil
}

func (f *Fetcher) download(ctx context.Context, url, outPath string) error {
	args := []string{
		"--no-warnings",
		"--no-playlist",
		"-f", f.formatSelector(),
		"--merge-output-format", "mp4",
		"-o", outPath,
		url,
	}
	_, stderr, code, err := f.invoke(ctx, args)
	if err != nil {
		return err
	}
	if code != 0 {
		return classifyFailure(stderr)
	}
	return nil
}

func (f *Fetcher) formatSelector() string {
	h := f.MaxHeight
	if h <= 0 {
		return "bestvideo+bestaudio/best"
	}
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best", h, h)
}

func (f *Fetcher) checkInstalled(ctx context.Context) error {
	_, _, code, err := f.invoke(ctx, []string{"--version"})
	if err != nil || code != 0 {
		return fmt.Errorf("%w: yt-dlp not found (install via `brew install yt-dlp`)", domain.ErrEngineUnavailable)
	}
	return nil
}

func (f *Fetcher) invoke(ctx context.Context, args []string) (string, string, int, error) {
	timeout := f.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := f.Path
	if name == "" {
		name = defaultPath
	}
	run := f.run
	if run == nil {
		run = execRunner
	}
	return run(cmdCtx, name, args)
}

// classifyFailure maps yt-dlp stderr patterns onto the retry sentinels.
func classifyFailure(stderr string) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "private video"),
		strings.Contains(msg, "has been removed"):
		return fmt.Errorf("%w: %s", retry.ErrVideoUnavailable, firstLine(stderr))
	case strings.Contains(msg, "is not a valid url"),
		strings.Contains(msg, "unsupported url"):
		return fmt.Errorf("%w: %s", retry.ErrInvalidURL, firstLine(stderr))
	default:
		return fmt.Errorf("yt-dlp failed: %s", firstLine(stderr))
	}
}

func firstLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return logger.Sanitize(l)
		}
	}
	return "(no stderr)"
}

func execRunner(ctx context.Context, name string, args []string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 10 * time.Second

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
		}
		return stdout.String(), stderr.String(), -1, err
	}
	return stdout.String(), stderr.String(), 0, nil
}

var _ port.VideoFetcher = (*Fetcher)(nil)
