package macos

import (
	"bytes"
	"context"
	"os/exec"

	"livewall/internal/infrastructure/logger"
	"livewall/internal/port"
)

// rotateToggleScript flips the desktop picture-rotation setting off and on,
// which forces the wallpaper agent to re-read the current asset. Freshly
// installed video wallpapers otherwise render as a static frame until nudged.
const rotateToggleScript = `
tell application "System Events"
	tell every desktop
		set change interval to 0
		set change interval to 1
	end tell
end tell`

// Runner executes one OS command; success is "exited zero", nothing richer.
type Runner func(ctx context.Context, name string, args ...string) error

type action struct {
	name string
	run  func(ctx context.Context, r Runner) error
}

// Refresher runs best-effort OS nudges after an install. No action's failure
// propagates; the pipeline only logs the aggregate.
type Refresher struct {
	run Runner
}

func NewRefresher() *Refresher {
	return &Refresher{run: execRun}
}

func (r *Refresher) actions() []action {
	return []action{
		{name: "restart idleassetsd", run: func(ctx context.Context, run Runner) error {
			return run(ctx, "killall", "idleassetsd")
		}},
		{name: "restart WallpaperAgent", run: func(ctx context.Context, run Runner) error {
			return run(ctx, "killall", "WallpaperAgent")
		}},
		{name: "toggle picture rotation", run: func(ctx context.Context, run Runner) error {
			return run(ctx, "osascript", "-e", rotateToggleScript)
		}},
	}
}

// Refresh runs every nudge in order, swallowing individual failures, and
// returns the success count.
func (r *Refresher) Refresh(ctx context.Context) int {
	succeeded := 0
	for _, a := range r.actions() {
		if err := a.run(ctx, r.run); err != nil {
			logger.Debug.Printf("refresh action %q failed: %v", a.name, err)
			continue
		}
		succeeded++
	}
	logger.Info.Printf("wallpaper refresh: %d/%d nudges succeeded", succeeded, len(r.actions()))
	return succeeded
}

// OpenWallpaperSettings opens the System Settings wallpaper pane so the user
// can seed an initial video wallpaper.
func (r *Refresher) OpenWallpaperSettings(ctx context.Context) error {
	return r.run(ctx, "open", "x-apple.systempreferences:com.apple.Wallpaper-Settings.extension")
}

func execRun(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logger.Debug.Printf("%s: %s", name, logger.Sanitize(stderr.String()))
		return err
	}
	return nil
}

var _ port.Refresher = (*Refresher)(nil)
