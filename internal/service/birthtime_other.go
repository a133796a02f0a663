//go:build !darwin

package service

import (
	"os"
	"time"
)

// Creation time is not portable; modification time is close enough off-macOS
// (only tests run there).
func birthtime(info os.FileInfo) time.Time {
	return info.ModTime()
}
