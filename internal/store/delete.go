package store

import (
	"fmt"
	"os"
)

// Delete removes the stored file for the given backup id and returns the
// record it held. The id must be explicit; the Latest sentinel is rejected
// as malformed. An id that parses but matches nothing fails with
// ErrBackupNotFound and leaves the backup directory unchanged.
func (s *Store) Delete(id, backupDir string) (*Record, error) {
	if _, err := ParseID(id); err != nil {
		return nil, err
	}

	rec, err := s.Resolve(id, "", backupDir)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(rec.StoredPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
		}
		return nil, fmt.Errorf("removing backup: %w", err)
	}

	s.logger.Info("backup deleted", "id", id)
	return rec, nil
}
