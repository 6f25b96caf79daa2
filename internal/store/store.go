package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KaleiDev/safe-backup-CYB225/internal/fsutil"
)

// Store implements the versioned backup store: timestamped copies of single
// files kept in a flat backup directory, with all metadata encoded in the
// stored filenames. The backup directory is an explicit parameter on every
// operation so tests can run against isolated temporary directories.
type Store struct {
	logger *slog.Logger
	clock  Clock

	mu   sync.Mutex
	last time.Time
}

// NewStore creates a Store with the provided dependencies.
func NewStore(logger *slog.Logger, clock Clock) *Store {
	return &Store{logger: logger, clock: clock}
}

// stamp returns a strictly increasing UTC instant. Wall clocks can repeat
// within their resolution or step backwards; bumping by a nanosecond keeps
// ids unique and their lexicographic order correct across repeated calls in
// the same process.
func (s *Store) stamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}

// Backup copies the file at sourcePath into backupDir under a fresh backup
// id and returns the resulting record. The copy is atomic: the backup is
// invisible until the final rename, and a failure mid-copy leaves the backup
// directory exactly as it was.
func (s *Store) Backup(sourcePath, backupDir string) (*Record, error) {
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolving source path: %w", err)
	}

	// Lstat so that symlinks are seen as symlinks, not their targets.
	info, err := os.Lstat(absSource)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, absSource)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotRegularFile, absSource)
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating backup directory: %v", ErrWriteFailed, err)
	}

	src, err := os.Open(absSource)
	if err != nil {
		return nil, fmt.Errorf("%w: opening source: %v", ErrWriteFailed, err)
	}
	defer src.Close()

	pending, err := fsutil.NewPendingFile(backupDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer pending.Discard()

	if _, err := io.Copy(pending, src); err != nil {
		return nil, fmt.Errorf("%w: copying source: %v", ErrWriteFailed, err)
	}
	checksum := pending.Checksum()
	name := filepath.Base(absSource)

	// A backup from an earlier run can already occupy the derived name when
	// the wall clock repeats, so take a fresh stamp per attempt instead of
	// overwriting silently.
	for attempt := 0; ; attempt++ {
		createdAt := s.stamp()
		id := MakeID(name, createdAt, checksum)
		dest := filepath.Join(backupDir, id)

		commitErr := pending.Commit(dest, false)
		if commitErr == nil {
			rec := &Record{
				ID:         id,
				SourcePath: absSource,
				StoredPath: dest,
				Checksum:   checksum,
				Size:       pending.Size(),
				CreatedAt:  createdAt,
			}
			s.logger.Info("backup created", "id", rec.ID, "source", absSource, "size", rec.Size)
			return rec, nil
		}
		if errors.Is(commitErr, fsutil.ErrDestinationExists) && attempt < 2 {
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, commitErr)
	}
}

// newRecord builds a Record for an existing stored file, recomputing the
// content checksum from the bytes on disk.
func (s *Store) newRecord(id string, parsed ParsedID, backupDir string) (*Record, error) {
	stored := filepath.Join(backupDir, id)

	info, err := os.Stat(stored)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", stored, err)
	}
	checksum, err := fsutil.SHA256File(stored)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", stored, err)
	}

	return &Record{
		ID:         id,
		SourcePath: parsed.Name,
		StoredPath: stored,
		Checksum:   checksum,
		Size:       info.Size(),
		CreatedAt:  parsed.CreatedAt,
	}, nil
}
