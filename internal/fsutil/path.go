package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot is returned by EnsureWithin when the canonical path lies
// outside the permitted root.
var ErrEscapesRoot = errors.New("path escapes permitted root")

// EnsureWithin verifies that path, once canonicalized, lies inside root and
// returns the canonical absolute destination. Symbolic links in root and in
// every existing ancestor of path are resolved, so a link pointing outside
// the root cannot smuggle a write out; string comparison alone is not
// trusted. path itself does not need to exist yet. root must exist.
func EnsureWithin(path, root string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	rootReal, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", fmt.Errorf("canonicalizing root %s: %w", rootAbs, err)
	}

	real, err := canonicalize(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(rootReal, real)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrEscapesRoot, real, rootReal)
	}
	return real, nil
}

// canonicalize resolves path to an absolute form with symlinks in every
// existing ancestor evaluated. Trailing components that do not exist yet are
// appended lexically after cleaning.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	prefix := abs
	var suffix []string
	for {
		real, err := filepath.EvalSymlinks(prefix)
		if err == nil {
			return filepath.Join(append([]string{real}, suffix...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("canonicalizing %s: %w", prefix, err)
		}
		parent := filepath.Dir(prefix)
		if parent == prefix {
			return abs, nil
		}
		suffix = append([]string{filepath.Base(prefix)}, suffix...)
		prefix = parent
	}
}
