package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var networkFilesystems = map[string]struct{}{
	"afpfs":  {},
	"cifs":   {},
	"nfs":    {},
	"smbfs":  {},
	"smb2":   {},
	"webdav": {},
}

// validateFilesystem rejects cache paths on network filesystems, where
// SQLite locking is unreliable.
func validateFilesystem(path string) error {
	return validateFilesystemWith(path, detectFilesystemType)
}

func validateFilesystemWith(path string, detect func(string) (string, error)) error {
	if path == "" {
		return fmt.Errorf("cache path is empty")
	}

	existing, err := nearestExistingPath(path)
	if err != nil {
		return fmt.Errorf("resolve cache path %q: %w", path, err)
	}

	fsType, err := detect(existing)
	if err != nil {
		// Detection is best effort.
		return nil
	}
	if isNetworkFilesystem(fsType) {
		return fmt.Errorf("cache path %q is on network filesystem %q; set cache.path to local disk", path, fsType)
	}
	return nil
}

func nearestExistingPath(path string) (string, error) {
	candidate, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	for {
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			return "", fmt.Errorf("no existing parent for %q", path)
		}
		candidate = parent
	}
}

func isNetworkFilesystem(fsType string) bool {
	_, found := networkFilesystems[strings.TrimSpace(strings.ToLower(fsType))]
	return found
}
