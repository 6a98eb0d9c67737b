// Package archive rotates the photo output directory out of the way so
// the next run starts with an empty one.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotExist is returned when there is no directory to archive
var ErrNotExist = errors.New("directory does not exist")

const (
	archiveDirName  = "archive"
	timestampLayout = "20060102-150405"
)

// Directory moves dir to <parent>/archive/<name>-<timestamp> and returns
// the new path. The timestamp is taken from now.
func Directory(dir string, now time.Time) (string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotExist, dir)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	clean := filepath.Clean(dir)
	archiveDir := filepath.Join(filepath.Dir(clean), archiveDirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(clean)
	target := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format(timestampLayout)))
	for i := 1; exists(target); i++ {
		target = filepath.Join(archiveDir, fmt.Sprintf("%s-%s-%d", name, now.Format(timestampLayout), i))
	}

	if err := os.Rename(clean, target); err != nil {
		return "", fmt.Errorf("failed to archive directory: %w", err)
	}
	return target, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
