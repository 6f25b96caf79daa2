package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("environment variables win", func(t *testing.T) {
		t.Setenv("SAFE_BACKUP_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("SAFE_BACKUP_HOME", "/custom/home")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/custom/home" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
		if defaults["log_dir"] != filepath.Join("/custom/home", "log") {
			t.Errorf("log_dir = %q", defaults["log_dir"])
		}
	})

	t.Run("falls back to home directory paths", func(t *testing.T) {
		t.Setenv("SAFE_BACKUP_CONFIG_PATH", "")
		t.Setenv("SAFE_BACKUP_HOME", "")
		t.Setenv("HOME", "/home/tester")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != "/home/tester/.config/safebackup.toml" {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/home/tester/.local/share/safebackup" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
	})
}
