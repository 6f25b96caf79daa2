package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// View opens the original file, or a stored backup when ref is non-empty,
// for reading. It returns the reader and the path being read; the caller
// owns the reader.
func (s *Store) View(ref, sourcePath, backupDir string) (io.ReadCloser, string, error) {
	if ref == "" {
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return nil, "", fmt.Errorf("resolving source path: %w", err)
		}
		f, err := os.Open(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, "", fmt.Errorf("%w: %s", ErrSourceNotFound, abs)
			}
			return nil, "", fmt.Errorf("opening %s: %w", abs, err)
		}
		return f, abs, nil
	}

	rec, err := s.Resolve(ref, sourcePath, backupDir)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(rec.StoredPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening backup: %w", err)
	}
	return f, rec.StoredPath, nil
}
