package store

import "errors"

// Error kinds returned by store operations. Callers match them with
// errors.Is. Each implies a different corrective action, so none are
// collapsed into a generic failure.
var (
	ErrSourceNotFound       = errors.New("source file not found")
	ErrSourceNotRegularFile = errors.New("source is not a regular file")
	ErrWriteFailed          = errors.New("backup write failed")
	ErrBackupNotFound       = errors.New("backup not found")
	ErrNoBackupsFound       = errors.New("no backups found")
	ErrIntegrityMismatch    = errors.New("backup content does not match its recorded checksum")
	ErrUnsafePath           = errors.New("destination escapes the permitted root")
	ErrMalformedID          = errors.New("malformed backup id")
)
