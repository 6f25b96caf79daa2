package app

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/KaleiDev/safe-backup-CYB225/internal/audit"
	"github.com/KaleiDev/safe-backup-CYB225/internal/config"
	"github.com/KaleiDev/safe-backup-CYB225/internal/store"
)

// App is the application layer between the CLI and the backup store. It
// constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the audit log lifecycle on
// Close.
type App struct {
	cfg       *config.Config
	backupDir string
	store     *store.Store
	audit     audit.Log
	clock     store.Clock
	op        *Operation
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config. backupDir is the
// already-resolved backup directory (flag beats config). operation names the
// CLI command being run (e.g. "Backup", "Restore"); parameters is a display
// string for the audit trail. The caller must call Close when done.
func NewApp(cfg *config.Config, backupDir, operation, parameters string) (*App, error) {
	if backupDir == "" {
		backupDir = cfg.BackupDir
	}

	auditLog, err := audit.NewLogFromConfig(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("creating audit log: %w", err)
	}

	opID := uuid.New().String()
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		auditLog.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &App{
		cfg:       cfg,
		backupDir: backupDir,
		store:     store.NewStore(logger, store.RealClock{}),
		audit:     auditLog,
		clock:     store.RealClock{},
		op:        NewOperation(opID, operation, parameters),
		logFile:   logFile,
	}, nil
}

// persistOperation saves the operation to the audit log, giving it an
// auto-increment row id. This should only be called for mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	rowID, err := a.audit.Begin(a.op.OpID, a.op.Name, a.op.Parameters, a.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.rowID = rowID
	return nil
}

// fail marks the operation's audit status and passes the error through.
func (a *App) fail(err error) error {
	a.op.Status = "error"
	return err
}

// Backup copies the file at rawPath into the backup directory and returns
// the new record.
func (a *App) Backup(rawPath string) (*store.Record, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	rec, err := a.store.Backup(rawPath, a.backupDir)
	if err != nil {
		return nil, a.fail(err)
	}
	return rec, nil
}

// List returns the backups of the named source file, oldest to newest.
func (a *App) List(rawPath string) ([]*store.Record, error) {
	return a.store.List(rawPath, a.backupDir)
}

// Restore writes the identified backup (or the latest one when id is empty)
// back to the original path, or to destOverride when given. Returns the path
// written.
func (a *App) Restore(rawPath, id, destOverride string) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	dest, err := a.store.Restore(id, rawPath, destOverride, a.backupDir)
	if err != nil {
		return "", a.fail(err)
	}
	return dest, nil
}

// Delete removes the identified backup and returns the record it held.
func (a *App) Delete(id string) (*store.Record, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	rec, err := a.store.Delete(id, a.backupDir)
	if err != nil {
		return nil, a.fail(err)
	}
	return rec, nil
}

// View opens the original file at rawPath, or the identified backup when id
// is non-empty, for reading. The caller owns the returned reader.
func (a *App) View(rawPath, id string) (io.ReadCloser, string, error) {
	return a.store.View(id, rawPath, a.backupDir)
}

// History returns the most recent recorded operations, newest first.
func (a *App) History(limit int) ([]*audit.Entry, error) {
	return a.audit.Recent(limit)
}

// BackupDir returns the backup directory this App operates on.
func (a *App) BackupDir() string {
	return a.backupDir
}

// Close finalizes the audit record for persisted operations and releases all
// resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.audit.Finish(a.op.rowID, a.op.Status, a.clock.Now().UTC()); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.audit.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing audit log: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
