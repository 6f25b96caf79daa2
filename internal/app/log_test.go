package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogHandler(t *testing.T) {
	t.Run("formats records as tab-separated fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(&logHandler{w: &buf, opID: "op-42"})

		logger.Info("backup complete", "source", "data.txt", "size", 5)

		line := strings.TrimSuffix(buf.String(), "\n")
		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			t.Fatalf("line has %d fields, want 6: %q", len(fields), line)
		}
		if fields[1] != "INFO" {
			t.Errorf("level field = %q, want INFO", fields[1])
		}
		if fields[2] != "op-42" {
			t.Errorf("opID field = %q, want op-42", fields[2])
		}
		if fields[3] != "backup complete" {
			t.Errorf("message field = %q", fields[3])
		}
		if fields[4] != "source=data.txt" || fields[5] != "size=5" {
			t.Errorf("attr fields = %q %q", fields[4], fields[5])
		}
	})

	t.Run("carries WithAttrs attributes on every record", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(&logHandler{w: &buf, opID: "op-42"}).With("operation", "Restore")

		logger.Warn("checksum prefix mismatch")

		if !strings.Contains(buf.String(), "\toperation=Restore") {
			t.Errorf("output missing preset attr: %q", buf.String())
		}
		if !strings.Contains(buf.String(), "\tWARN\t") {
			t.Errorf("output missing level: %q", buf.String())
		}
	})
}

func TestNewLogger(t *testing.T) {
	logDir := t.TempDir() + "/log"
	logger, f, err := newLogger(logDir, "op-1")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f.Name() != logDir+"/safebackup.log" {
		t.Errorf("log file = %s", f.Name())
	}
}
