package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/KaleiDev/safe-backup-CYB225/internal/audit/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteLog implements Log using SQLite.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog opens (or creates) the audit database at path and migrates it
// to the latest schema. path may be ":memory:" for an in-memory database.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating audit database: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// Exported for tests that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (l *SQLiteLog) Begin(opID, operation, parameters string, startedAt time.Time) (int64, error) {
	res, err := l.db.Exec(
		`INSERT INTO operations (op_id, operation, parameters, status, started_at)
		 VALUES (?, ?, ?, 'running', ?)`,
		opID, operation, parameters, startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("recording operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

func (l *SQLiteLog) Finish(id int64, status string, finishedAt time.Time) error {
	_, err := l.db.Exec(
		`UPDATE operations SET status = ?, finished_at = ? WHERE id = ?`,
		status, finishedAt, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (l *SQLiteLog) Recent(limit int) ([]*Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, op_id, operation, parameters, status, started_at, finished_at
		 FROM operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var finished sql.NullTime
		if err := rows.Scan(&e.ID, &e.OpID, &e.Operation, &e.Parameters, &e.Status, &e.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning operation row: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			e.FinishedAt = &t
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading operation rows: %w", err)
	}
	return entries, nil
}

func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

// Compile-time check that SQLiteLog implements the Log interface
var _ Log = (*SQLiteLog)(nil)
