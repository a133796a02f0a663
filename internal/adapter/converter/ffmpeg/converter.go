package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"livewall/internal/domain"
	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

// hardware-failure signals that justify one software retry. videotoolbox
// reports session-creation failures either through these exit codes or with a
// recognizable stderr line while still exiting 1.
var fallbackExitCodes = map[int]bool{
	69:  true,
	187: true,
}

var fallbackStderrMarkers = []string{
	"videotoolbox",
	"cannot create compression session",
	"hardware encoder",
	"no capable devices",
}

// Runner executes one engine subprocess and resolves with its exit code and
// captured output. Replaceable in tests.
type Runner func(ctx context.Context, name string, args []string) (stdout, stderr string, exitCode int, err error)

// Options are the fixed target encode parameters for wallpaper assets.
type Options struct {
	FFmpegPath  string
	FFprobePath string

	Width   int
	Height  int
	FPS     int
	Bitrate string
	MaxRate string
	BufSize string

	// SoftwarePreset only applies to the libx265 fallback path; the
	// hardware encoder has no preset knob.
	SoftwarePreset string
}

type Transcoder struct {
	opts Options
	run  Runner

	checkOnce sync.Once
	checkErr  error
}

func NewTranscoder(opts Options) *Transcoder {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.SoftwarePreset == "" {
		opts.SoftwarePreset = "fast"
	}
	return &Transcoder{opts: opts, run: execRunner}
}

// Probe returns ffprobe metadata for a local media file.
func (t *Transcoder) Probe(ctx context.Context, path string) (*domain.ProbeResult, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if err := t.ensureAvailable(ctx); err != nil {
		return nil, err
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	stdout, stderr, code, err := t.run(ctx, t.opts.FFprobePath, args)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	if code != 0 {
		return nil, fmt.Errorf("%w: ffprobe exit %d: %s", domain.ErrEngineExecutionFailed, code, tail(stderr))
	}

	var result domain.ProbeResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &result, nil
}

// ExtendLoop repeats the input stream without re-encoding until minSeconds is
// reached, regenerating timestamps at loop boundaries, and truncates exactly
// at minSeconds.
func (t *Transcoder) ExtendLoop(ctx context.Context, inputPath, outputPath string, minSeconds float64) error {
	if err := validatePath(inputPath); err != nil {
		return err
	}
	if err := validatePath(outputPath); err != nil {
		return err
	}
	if err := t.ensureAvailable(ctx); err != nil {
		return err
	}

	args := []string{
		"-stream_loop", "-1",
		"-i", inputPath,
		"-c", "copy",
		"-fflags", "+genpts",
		"-t", fmt.Sprintf("%.3f", minSeconds),
		"-y", outputPath,
	}
	_, stderr, code, err := t.run(ctx, t.opts.FFmpegPath, args)
	if err != nil {
		return fmt.Errorf("extend loop: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("%w: loop extension exit %d: %s", domain.ErrEngineExecutionFailed, code, tail(stderr))
	}
	return verifyOutput(outputPath)
}

// Transcode converts inputPath into a 10-bit HEVC .mov wallpaper asset.
// The hardware encoder is tried first; a recognized hardware failure gets
// exactly one retry on the software profile.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	if err := validatePath(inputPath); err != nil {
		return err
	}
	if err := validatePath(outputPath); err != nil {
		return err
	}
	if err := t.ensureAvailable(ctx); err != nil {
		return err
	}

	stderr, code, err := t.encode(ctx, inputPath, outputPath, false)
	if err != nil {
		return fmt.Errorf("transcode: %w", err)
	}
	if code != 0 {
		if !isHardwareFailure(code, stderr) {
			return fmt.Errorf("%w: exit %d: %s", domain.ErrEngineExecutionFailed, code, tail(stderr))
		}
		logger.Warn.Printf("hardware encoder failed (exit %d), retrying with software profile", code)

		stderr, code, err = t.encode(ctx, inputPath, outputPath, true)
		if err != nil {
			return fmt.Errorf("transcode (software): %w", err)
		}
		if code != 0 {
			return fmt.Errorf("%w: software fallback exit %d: %s", domain.ErrEngineExecutionFailed, code, tail(stderr))
		}
	}
	return verifyOutput(outputPath)
}

func (t *Transcoder) encode(ctx context.Context, inputPath, outputPath string, software bool) (stderr string, code int, err error) {
	args := []string{"-i", inputPath}

	if software {
		// The software path spells out what videotoolbox decides on its
		// own: speed preset and codec profile/level.
		args = append(args,
			"-c:v", "libx265",
			"-preset", t.opts.SoftwarePreset,
			"-profile:v", "main10",
			"-level:v", "6.1",
			"-pix_fmt", "yuv420p10le",
		)
	} else {
		args = append(args,
			"-c:v", "hevc_videotoolbox",
			"-profile:v", "main10",
			"-pix_fmt", "p010le",
		)
	}

	args = append(args,
		"-tag:v", "hvc1",
		"-vf", fmt.Sprintf("scale=%d:%d", t.opts.Width, t.opts.Height),
		"-r", fmt.Sprintf("%d", t.opts.FPS),
		"-b:v", t.opts.Bitrate,
		"-maxrate", t.opts.MaxRate,
		"-bufsize", t.opts.BufSize,
		"-an",
		"-movflags", "+faststart",
		"-y", outputPath,
	)

	_, stderr, code, err = t.run(ctx, t.opts.FFmpegPath, args)
	return stderr, code, err
}

// ensureAvailable probes the engine once per process.
func (t *Transcoder) ensureAvailable(ctx context.Context) error {
	t.checkOnce.Do(func() {
		_, _, code, err := t.run(ctx, t.opts.FFmpegPath, []string{"-version"})
		if err != nil || code != 0 {
			t.checkErr = fmt.Errorf("%w: ffmpeg not found or not executable (install via `brew install ffmpeg`)", domain.ErrEngineUnavailable)
		}
	})
	return t.checkErr
}

func isHardwareFailure(exitCode int, stderr string) bool {
	if fallbackExitCodes[exitCode] {
		return true
	}
	lower := strings.ToLower(stderr)
	for _, marker := range fallbackStderrMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// verifyOutput guards against the engine exiting zero without producing a
// usable file (interrupted writes, full disks).
func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrOutputMissing, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", domain.ErrOutputMissing, path)
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	return nil
}

// tail keeps error messages short: last non-empty stderr line.
func tail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
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

	// On interrupt, ask the encoder to finalize rather than killing it
	// outright; give it a grace window before SIGKILL.
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

var _ port.Transcoder = (*Transcoder)(nil)
