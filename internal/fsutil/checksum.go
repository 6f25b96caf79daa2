package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// SHA256Reader consumes r and returns the SHA-256 of everything read as a
// lowercase hex string, along with the number of bytes read.
func SHA256Reader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// SHA256File returns the SHA-256 of the file's current bytes as a lowercase
// hex string. Read errors are surfaced to the caller, never swallowed.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sum, _, err := SHA256Reader(f)
	return sum, err
}
