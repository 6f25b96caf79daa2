package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaleiDev/safe-backup-CYB225/internal/config"
)

// NewLogFromConfig creates a Log implementation based on the audit config
// type.
func NewLogFromConfig(cfg config.AuditConfig) (Log, error) {
	switch cfg.Type {
	case "", "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite audit log")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating audit data directory: %w", err)
		}
		return NewSQLiteLog(filepath.Join(cfg.DataDir, "audit.db"))
	case "memory":
		return NewSQLiteLog(":memory:")
	default:
		return nil, fmt.Errorf("unknown audit log type: %s", cfg.Type)
	}
}
