package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Latest is the sentinel accepted in place of an explicit backup id.
const Latest = "latest"

// Resolve maps a backup id, or the Latest sentinel (or an empty ref, which
// means the same), to its record. source supplies the basename used to find
// the latest backup; it is ignored when ref is an explicit id.
func (s *Store) Resolve(ref, source, backupDir string) (*Record, error) {
	if ref == "" || ref == Latest {
		records, err := s.List(source, backupDir)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w for %s", ErrNoBackupsFound, filepath.Base(source))
		}
		return records[len(records)-1], nil
	}

	parsed, err := ParseID(ref)
	if err != nil {
		return nil, err
	}

	stored := filepath.Join(backupDir, ref)
	info, err := os.Lstat(stored)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, ref)
		}
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, ref)
	}

	return s.newRecord(ref, parsed, backupDir)
}
