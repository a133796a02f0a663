package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable means ffmpeg/ffprobe (or yt-dlp) is not installed
	// or not executable.
	ErrEngineUnavailable = errors.New("media engine unavailable")

	// ErrEngineExecutionFailed is a non-zero engine exit outside the known
	// hardware-fallback set.
	ErrEngineExecutionFailed = errors.New("media engine execution failed")

	// ErrOutputMissing means the engine reported success but the expected
	// output file is absent or empty.
	ErrOutputMissing = errors.New("expected output file missing")

	// ErrInstallVerificationFailed means the target file could not be
	// re-read after the copy-over.
	ErrInstallVerificationFailed = errors.New("install verification failed")

	// ErrSeedTimeout means the wallpaper directory stayed empty for the
	// whole bounded polling window.
	ErrSeedTimeout = errors.New("timed out waiting for a wallpaper asset to appear")

	// ErrBackupFailed aborts a replace before anything destructive happens.
	ErrBackupFailed = errors.New("backup failed")

	// ErrUserCancelled is a clean terminal outcome, not a failure.
	ErrUserCancelled = errors.New("cancelled by user")
)

// StageError tags a fatal error with the pipeline stage that produced it and
// an optional remediation hint for the CLI to print.
type StageError struct {
	Stage string
	Hint  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Stage wraps err with the stage name and remediation hint. Returns nil for a
// nil err so callers can wrap unconditionally.
func Stage(stage string, err error, hint string) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Hint: hint, Err: err}
}

// HintOf extracts the remediation hint from an error chain, if any.
func HintOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Hint
	}
	return ""
}
