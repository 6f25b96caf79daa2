package fsutil_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaleiDev/safe-backup-CYB225/internal/fsutil"
	"github.com/KaleiDev/safe-backup-CYB225/internal/testutil"
)

// failingReader yields some data and then an error, simulating an
// interrupted copy.
type failingReader struct {
	data []byte
	fed  bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.fed {
		r.fed = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("simulated read failure")
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestPendingFile_Commit(t *testing.T) {
	t.Run("commits exact bytes with matching checksum", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out.txt")
		content := []byte("hello")

		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}
		defer p.Discard()

		if _, err := io.Copy(p, strings.NewReader(string(content))); err != nil {
			t.Fatalf("copy error = %v", err)
		}

		// The destination must not exist before the commit point.
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Fatalf("destination visible before commit")
		}

		if err := p.Commit(dest, false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		got := testutil.ReadFile(t, dest)
		if string(got) != string(content) {
			t.Errorf("committed content = %q, want %q", got, content)
		}
		if p.Checksum() != testutil.SHA256Hex(content) {
			t.Errorf("Checksum() = %s, want %s", p.Checksum(), testutil.SHA256Hex(content))
		}
		if p.Size() != int64(len(content)) {
			t.Errorf("Size() = %d, want %d", p.Size(), len(content))
		}

		// Only the committed file remains.
		if names := dirEntries(t, dir); len(names) != 1 || names[0] != "out.txt" {
			t.Errorf("directory entries = %v, want [out.txt]", names)
		}
	})

	t.Run("refuses to overwrite and allows retry under a new name", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out.txt")
		testutil.WriteFile(t, dest, []byte("original"))

		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}
		defer p.Discard()
		io.Copy(p, strings.NewReader("new content"))

		err = p.Commit(dest, false)
		if !errors.Is(err, fsutil.ErrDestinationExists) {
			t.Fatalf("Commit() error = %v, want ErrDestinationExists", err)
		}
		if got := testutil.ReadFile(t, dest); string(got) != "original" {
			t.Errorf("destination modified on refused commit: %q", got)
		}

		// The temporary file survives a refused commit so the caller can
		// pick a different name.
		dest2 := filepath.Join(dir, "out2.txt")
		if err := p.Commit(dest2, false); err != nil {
			t.Fatalf("retry Commit() error = %v", err)
		}
		if got := testutil.ReadFile(t, dest2); string(got) != "new content" {
			t.Errorf("retried commit content = %q, want %q", got, "new content")
		}
	})

	t.Run("overwrite replaces destination at the rename", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out.txt")
		testutil.WriteFile(t, dest, []byte("old"))

		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}
		defer p.Discard()
		io.Copy(p, strings.NewReader("new"))

		if err := p.Commit(dest, true); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if got := testutil.ReadFile(t, dest); string(got) != "new" {
			t.Errorf("content = %q, want %q", got, "new")
		}
	})

	t.Run("double commit fails", func(t *testing.T) {
		dir := t.TempDir()
		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}
		io.Copy(p, strings.NewReader("x"))
		if err := p.Commit(filepath.Join(dir, "a"), false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if err := p.Commit(filepath.Join(dir, "b"), false); err == nil {
			t.Error("second Commit() succeeded, want error")
		}
	})
}

func TestPendingFile_Discard(t *testing.T) {
	t.Run("removes the temporary file", func(t *testing.T) {
		dir := t.TempDir()
		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}
		io.Copy(p, strings.NewReader("partial"))

		p.Discard()

		if names := dirEntries(t, dir); len(names) != 0 {
			t.Errorf("directory entries after Discard = %v, want none", names)
		}
	})

	t.Run("interrupted copy leaves no trace", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out.txt")

		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}

		if _, err := io.Copy(p, &failingReader{data: []byte("some bytes")}); err == nil {
			t.Fatal("copy succeeded, want simulated failure")
		}
		p.Discard()

		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Error("destination exists after interrupted copy")
		}
		if names := dirEntries(t, dir); len(names) != 0 {
			t.Errorf("directory entries after interrupted copy = %v, want none", names)
		}
	})

	t.Run("no-op after commit", func(t *testing.T) {
		dir := t.TempDir()
		dest := filepath.Join(dir, "out.txt")
		p, err := fsutil.NewPendingFile(dir)
		if err != nil {
			t.Fatalf("NewPendingFile() error = %v", err)
		}
		io.Copy(p, strings.NewReader("keep me"))
		if err := p.Commit(dest, false); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		p.Discard()

		if got := testutil.ReadFile(t, dest); string(got) != "keep me" {
			t.Errorf("content after post-commit Discard = %q, want %q", got, "keep me")
		}
	})
}
