package port

import (
	"context"

	"livewall/internal/domain"
)

// Transcoder is the media engine boundary. Implementations shell out to
// ffmpeg/ffprobe; tests substitute fakes.
type Transcoder interface {
	// Probe returns container and stream metadata for a local file.
	Probe(ctx context.Context, path string) (*domain.ProbeResult, error)

	// ExtendLoop writes a stream-copied loop of inputPath truncated at
	// minSeconds to outputPath. No re-encode.
	ExtendLoop(ctx context.Context, inputPath, outputPath string, minSeconds float64) error

	// Transcode converts inputPath into the wallpaper target format at
	// outputPath, falling back from the hardware to the software encoder
	// exactly once on a known hardware-failure signal.
	Transcode(ctx context.Context, inputPath, outputPath string) error
}
