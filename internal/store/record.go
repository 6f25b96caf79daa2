package store

import "time"

// Record describes one stored backup. Every field is derived from the stored
// file's name and content: the store keeps no side metadata, so the full set
// of records is always reconstructible by scanning the backup directory.
//
// Records are never mutated in place. A record is created by a successful
// Backup and destroyed by an explicit Delete; Restore copies from the stored
// file, never into it.
type Record struct {
	ID         string
	SourcePath string // original path at backup time; basename only when rebuilt from a listing
	StoredPath string
	Checksum   string // full SHA-256 of the stored bytes, lowercase hex
	Size       int64
	CreatedAt  time.Time
}
