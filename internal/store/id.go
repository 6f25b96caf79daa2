package store

import (
	"fmt"
	"strings"
	"time"
)

// Backup ids encode everything the store needs to rebuild its state from a
// directory listing:
//
//	<original basename>__<creation timestamp>__<checksum prefix>
//
// Example:
//
//	data.txt__20250826T101522.123456789Z__2cf24dba5fb0a30e
//
// The timestamp layout is fixed-width with zero-padded nanoseconds, so the
// ids of a given source file sort lexicographically in creation order and
// "most recent" is a plain max. The checksum prefix is the first 16 hex
// characters of the content SHA-256 at creation time; Restore checks the
// stored bytes against it before writing anything.
const (
	idSeparator  = "__"
	idTimeLayout = "20060102T150405.000000000Z"
	idPrefixLen  = 16
)

// ParsedID holds the components recovered from a well-formed backup id.
type ParsedID struct {
	Name           string    // original basename, extension included
	CreatedAt      time.Time // creation instant, UTC
	ChecksumPrefix string    // first 16 hex characters of the creation-time SHA-256
}

// MakeID derives the backup id for a source basename, creation instant and
// full content checksum.
func MakeID(name string, createdAt time.Time, checksum string) string {
	return name + idSeparator + createdAt.UTC().Format(idTimeLayout) + idSeparator + checksum[:idPrefixLen]
}

// ParseID recovers the components of a backup id. A string that does not
// follow the encoding fails with ErrMalformedID: unlike a missing backup, a
// malformed id signals a caller error or directory corruption, so the two
// are reported distinctly. Splitting is anchored at the right because the
// original basename may itself contain the separator.
func ParseID(id string) (ParsedID, error) {
	rest, prefix, ok := cutLast(id, idSeparator)
	if !ok {
		return ParsedID{}, fmt.Errorf("%w: %q has no checksum segment", ErrMalformedID, id)
	}
	if len(prefix) != idPrefixLen || !isLowerHex(prefix) {
		return ParsedID{}, fmt.Errorf("%w: %q has an invalid checksum segment", ErrMalformedID, id)
	}

	name, stamp, ok := cutLast(rest, idSeparator)
	if !ok || name == "" {
		return ParsedID{}, fmt.Errorf("%w: %q has no timestamp segment", ErrMalformedID, id)
	}
	if len(stamp) != len(idTimeLayout) {
		return ParsedID{}, fmt.Errorf("%w: %q has an invalid timestamp", ErrMalformedID, id)
	}
	createdAt, err := time.ParseInLocation(idTimeLayout, stamp, time.UTC)
	if err != nil {
		return ParsedID{}, fmt.Errorf("%w: %q has an invalid timestamp", ErrMalformedID, id)
	}

	return ParsedID{Name: name, CreatedAt: createdAt, ChecksumPrefix: prefix}, nil
}

// cutLast is strings.Cut anchored at the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
