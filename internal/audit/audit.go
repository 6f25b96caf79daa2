package audit

import "time"

// Entry is one recorded CLI invocation.
type Entry struct {
	ID         int64
	OpID       string // per-invocation correlation id, shared with the log lines
	Operation  string
	Parameters string
	Status     string // "running", then "success" or "error"
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Log records operations for the history command. The audit trail lives
// outside the backup directory and is never consulted to locate backups:
// the store remains reconstructible from stored filenames alone.
type Log interface {
	// Begin inserts a new operation row and returns its id.
	Begin(opID, operation, parameters string, startedAt time.Time) (int64, error)

	// Finish marks an operation row with its final status.
	Finish(id int64, status string, finishedAt time.Time) error

	// Recent returns up to limit operations, newest first.
	Recent(limit int) ([]*Entry, error)

	Close() error
}
