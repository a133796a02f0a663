package port

import (
	"context"

	"livewall/internal/domain"
)

// VideoFetcher resolves a URL into a downloaded local file plus basic
// metadata (title, duration, height).
type VideoFetcher interface {
	Fetch(ctx context.Context, url, destDir string) (*domain.SourceVideo, error)
}
