package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"livewall/internal/domain"
)

// acceptedContainers are the wallpaper container types the OS serves.
var acceptedContainers = map[string]bool{
	".mov": true,
	".mp4": true,
}

// Scanner lists candidate wallpaper assets in the OS-managed directory.
type Scanner struct {
	Dir string
}

func NewScanner(dir string) *Scanner {
	return &Scanner{Dir: dir}
}

// Scan returns the current asset inventory sorted by descending modification
// time. A missing directory is an empty inventory, not an error; the
// canonical target is created so later stages can write into it.
func (s *Scanner) Scan() ([]domain.WallpaperAsset, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(s.Dir, 0o755); mkErr != nil {
				return nil, fmt.Errorf("create wallpaper directory: %w", mkErr)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("read wallpaper directory: %w", err)
	}

	var assets []domain.WallpaperAsset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !acceptedContainers[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		assets = append(assets, domain.WallpaperAsset{
			Path:       filepath.Join(s.Dir, entry.Name()),
			Name:       entry.Name(),
			SizeBytes:  info.Size(),
			CreatedAt:  birthtime(info),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].ModifiedAt.After(assets[j].ModifiedAt)
	})
	return assets, nil
}
