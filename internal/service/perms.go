package service

import (
	"os"
	"path/filepath"
	"strconv"

	"livewall/internal/infrastructure/logger"
)

// normalizedMode allows owner/group read-write and world read, so the human
// user can later delete or modify files the tool created under sudo.
const normalizedMode = 0o664

// Normalizer reconciles ownership and mode of files created while the
// process runs elevated. It never returns an error: all failures collapse to
// false so callers can warn without aborting a pipeline.
type Normalizer struct {
	geteuid   func() int
	lookupEnv func(string) (string, bool)
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		geteuid:   os.Geteuid,
		lookupEnv: os.LookupEnv,
	}
}

// Normalize chowns path back to the invoking user when running under sudo,
// then applies the normalized mode. Reports success as a bool.
func (n *Normalizer) Normalize(path string) bool {
	ok := true

	if n.geteuid() == 0 {
		uid, gid, found := n.originalUser()
		if found {
			if err := os.Chown(path, uid, gid); err != nil {
				logger.Debug.Printf("chown %s: %v", path, err)
				ok = false
			}
		}
	}

	if err := os.Chmod(path, normalizedMode); err != nil {
		logger.Debug.Printf("chmod %s: %v", path, err)
		ok = false
	}
	return ok
}

// RepairDir normalizes every regular file in dir. Returns how many files
// were repaired and how many failed.
func (n *Normalizer) RepairDir(dir string) (repaired, failed int) {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if n.Normalize(path) {
			repaired++
		} else {
			failed++
		}
		return nil
	})
	if err != nil {
		logger.Warn.Printf("permission repair walk: %v", err)
	}
	return repaired, failed
}

// originalUser reads the pre-sudo identity from the environment.
func (n *Normalizer) originalUser() (uid, gid int, found bool) {
	rawUID, okUID := n.lookupEnv("SUDO_UID")
	rawGID, okGID := n.lookupEnv("SUDO_GID")
	if !okUID || !okGID {
		return 0, 0, false
	}
	uid, errUID := strconv.Atoi(rawUID)
	gid, errGID := strconv.Atoi(rawGID)
	if errUID != nil || errGID != nil {
		return 0, 0, false
	}
	return uid, gid, true
}
