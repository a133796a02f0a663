package service

import "time"

// Gate holds the quality/duration policy thresholds. Both come from
// configuration, never from call sites.
type Gate struct {
	MinHeight   int
	MinDuration time.Duration
}

// BelowQuality reports whether the source deserves a quality warning.
// Warning-only: a lower-quality wallpaper is still usable, so this never
// blocks the pipeline.
func (g Gate) BelowQuality(heightPixels int) bool {
	return heightPixels > 0 && heightPixels < g.MinHeight
}

// NeedsExtension reports whether the source must be loop-extended before
// transcoding.
func (g Gate) NeedsExtension(durationSeconds float64) bool {
	return durationSeconds > 0 && durationSeconds < g.MinDuration.Seconds()
}
