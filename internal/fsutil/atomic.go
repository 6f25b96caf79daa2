package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"path/filepath"
)

// ErrDestinationExists is returned by Commit when the destination is already
// present and overwrite was not requested.
var ErrDestinationExists = errors.New("destination already exists")

// PendingFile is a write in progress, backed by a uniquely named temporary
// file in the destination's directory (same filesystem, so the final rename
// is atomic). Bytes are hashed as they are written, so the checksum always
// describes exactly the bytes that get committed.
//
// Commit renames the temporary file onto its destination; that rename is the
// single commit point. Until it happens no reader can observe the new
// content under the final name, and any failure leaves the destination
// untouched.
type PendingFile struct {
	f      *os.File
	path   string
	hash   hash.Hash
	size   int64
	closed bool
	done   bool
}

// NewPendingFile creates a temporary file in dir. The caller must finish
// with Commit or Discard; deferring Discard is safe after a successful
// Commit.
func NewPendingFile(dir string) (*PendingFile, error) {
	f, err := os.CreateTemp(dir, ".pending-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	return &PendingFile{f: f, path: f.Name(), hash: sha256.New()}, nil
}

func (p *PendingFile) Write(b []byte) (int, error) {
	n, err := p.f.Write(b)
	p.hash.Write(b[:n])
	p.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing temporary file: %w", err)
	}
	return n, nil
}

// Checksum returns the SHA-256 of the bytes written so far, lowercase hex.
func (p *PendingFile) Checksum() string {
	return hex.EncodeToString(p.hash.Sum(nil))
}

// Size returns the number of bytes written so far.
func (p *PendingFile) Size() int64 {
	return p.size
}

// Commit flushes the temporary file to stable storage and renames it onto
// dest. Unless overwrite is set, Commit fails with ErrDestinationExists when
// dest is already present; in that case the temporary file is kept so the
// caller may retry under a different name. Any other failure removes the
// temporary file and leaves dest as it was.
func (p *PendingFile) Commit(dest string, overwrite bool) error {
	if p.done {
		return errors.New("pending file already committed or discarded")
	}

	if !p.closed {
		if err := p.f.Sync(); err != nil {
			p.Discard()
			return fmt.Errorf("syncing temporary file: %w", err)
		}
		if err := p.f.Close(); err != nil {
			p.closed = true
			p.Discard()
			return fmt.Errorf("closing temporary file: %w", err)
		}
		p.closed = true
	}

	if !overwrite {
		switch _, err := os.Lstat(dest); {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		case !os.IsNotExist(err):
			p.Discard()
			return fmt.Errorf("checking destination: %w", err)
		}
	}

	if err := os.Rename(p.path, dest); err != nil {
		p.Discard()
		return fmt.Errorf("renaming into place: %w", err)
	}
	p.done = true

	// Sync the directory so the rename itself survives a crash. Not every
	// platform supports this; a failure here does not undo the commit.
	if d, err := os.Open(filepath.Dir(dest)); err == nil {
		d.Sync()
		d.Close()
	}

	return nil
}

// Discard removes the temporary file. It is a no-op after a successful
// Commit.
func (p *PendingFile) Discard() {
	if p.done {
		return
	}
	p.done = true
	if !p.closed {
		p.f.Close()
		p.closed = true
	}
	os.Remove(p.path)
}
