package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// List returns the backups of the named source file, ordered oldest to
// newest by creation time with id string order breaking ties. source may be
// a path or a bare filename; only its basename is used for matching.
//
// Directory entries that do not parse as backup ids are skipped, so the
// backup directory tolerates unrelated files. A missing backup directory or
// zero matches yields an empty result, not an error.
func (s *Store) List(source, backupDir string) ([]*Record, error) {
	name := filepath.Base(source)

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		parsed, err := ParseID(entry.Name())
		if err != nil {
			continue // foreign file, not ours
		}
		if parsed.Name != name {
			continue
		}

		rec, err := s.newRecord(entry.Name(), parsed, backupDir)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}
