package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment
// variables first. Environment variables:
//   - SAFE_BACKUP_CONFIG_PATH: config file location (default: ~/.config/safebackup.toml)
//   - SAFE_BACKUP_HOME: base directory for safebackup data (default: ~/.local/share/safebackup)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking SAFE_BACKUP_CONFIG_PATH
// first, then falling back to the default ~/.config/safebackup.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("SAFE_BACKUP_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "safebackup.toml"), nil
}

// getBaseDir returns the base directory for safebackup data, checking
// SAFE_BACKUP_HOME first, then falling back to the XDG default
// ~/.local/share/safebackup.
func getBaseDir() (string, error) {
	if path := os.Getenv("SAFE_BACKUP_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "safebackup"), nil
}
