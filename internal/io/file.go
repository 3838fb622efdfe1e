package ioutils

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	separatorChars = regexp.MustCompile(`[/\\]`)
	invalidChars   = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FileExists reports whether path exists.
//
// Errors other than "does not exist" are returned so callers can tell a
// missing file from an unreadable directory.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// SanitizeFileName turns free text into a single safe path component.
//
// The following transformations are applied:
//   - Unicode is normalized to NFC so equal names compare equal
//   - Path separators (/ and \) → hyphen
//   - Other invalid characters (<>:"|?* and control chars 0x00-0x1f) → underscore
//   - Multiple whitespace → single space
//   - Leading whitespace, trailing dots and trailing whitespace → removed
//   - An empty result, "." or ".." → underscore
//
// Example:
//
//	SanitizeFileName("AC/DC")              // Returns "AC-DC"
//	SanitizeFileName("Song: Part 1")       // Returns "Song_ Part 1"
//	SanitizeFileName("Track...")           // Returns "Track"
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = separatorChars.ReplaceAllString(name, "-")
	name = invalidChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, " ")
	name = strings.TrimLeft(name, " ")
	name = strings.TrimRight(name, ". ")

	if name == "" {
		return "_"
	}
	return name
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
