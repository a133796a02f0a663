package port

import "context"

// Refresher nudges the OS into picking up a freshly installed wallpaper.
// Every action is best-effort: failures are swallowed and only counted.
type Refresher interface {
	// Refresh runs the ordered nudge list and returns how many actions
	// succeeded. Never returns an error.
	Refresh(ctx context.Context) int

	// OpenWallpaperSettings opens the OS wallpaper settings pane so the
	// user can seed an initial asset.
	OpenWallpaperSettings(ctx context.Context) error
}
