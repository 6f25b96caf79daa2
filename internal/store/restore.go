package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaleiDev/safe-backup-CYB225/internal/fsutil"
)

// Restore copies the resolved backup's bytes to destPath and returns the
// path written. ref is an explicit backup id or the Latest sentinel; an
// empty destPath restores to the original source path.
//
// The destination, canonicalized through symlinks, must stay within the
// source file's directory; the guard runs strictly before any write. The
// stored file's current checksum must still match the creation-time checksum
// recorded in its id, so externally corrupted or tampered backups are never
// restored. The copy itself goes through the atomic writer, so an existing
// destination is replaced only at the rename commit point and no
// half-restored file is ever visible.
func (s *Store) Restore(ref, sourcePath, destPath, backupDir string) (string, error) {
	rec, err := s.Resolve(ref, sourcePath, backupDir)
	if err != nil {
		return "", err
	}

	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", fmt.Errorf("resolving source path: %w", err)
	}
	if destPath == "" {
		destPath = absSource
	}

	root := filepath.Dir(absSource)
	dest, err := fsutil.EnsureWithin(destPath, root)
	if err != nil {
		if errors.Is(err, fsutil.ErrEscapesRoot) {
			return "", fmt.Errorf("%w: %v", ErrUnsafePath, err)
		}
		return "", err
	}

	parsed, err := ParseID(rec.ID)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(rec.Checksum, parsed.ChecksumPrefix) {
		return "", fmt.Errorf("%w: %s: stored bytes hash to %s but the id records %s",
			ErrIntegrityMismatch, rec.ID, rec.Checksum, parsed.ChecksumPrefix)
	}

	stored, err := os.Open(rec.StoredPath)
	if err != nil {
		return "", fmt.Errorf("opening backup: %w", err)
	}
	defer stored.Close()

	pending, err := fsutil.NewPendingFile(filepath.Dir(dest))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer pending.Discard()

	if _, err := io.Copy(pending, stored); err != nil {
		return "", fmt.Errorf("%w: copying backup: %v", ErrWriteFailed, err)
	}
	if pending.Checksum() != rec.Checksum {
		return "", fmt.Errorf("%w: %s changed while being restored", ErrIntegrityMismatch, rec.ID)
	}

	if err := pending.Commit(dest, true); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.logger.Info("backup restored", "id", rec.ID, "dest", dest)
	return dest, nil
}
