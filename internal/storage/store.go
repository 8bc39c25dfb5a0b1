package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store keeps uploaded file bytes under a single local directory. On-disk
// names are decoupled from display names: every stored file gets a random
// suffix so paths are never reused.
type Store struct {
	dir string
}

// NewStore ensures the upload directory exists and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// SanitizeFilename strips path components and traversal sequences from a
// client-supplied filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	for _, bad := range []string{"..", "/", "\\", "\x00"} {
		name = strings.ReplaceAll(name, bad, "")
	}
	return name
}

// UniqueName derives a collision-proof on-disk name from the display name.
func UniqueName(original string) string {
	sanitized := SanitizeFilename(original)
	ext := filepath.Ext(sanitized)
	stem := strings.TrimSuffix(sanitized, ext)
	return fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], ext)
}

// Save writes the reader's bytes to a new file under the store directory and
// returns the storage path and byte count.
func (s *Store) Save(name string, r io.Reader) (string, int64, error) {
	path := filepath.Join(s.dir, SanitizeFilename(name))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	return path, size, nil
}

// Open opens stored bytes for reading.
func (s *Store) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Exists reports whether the stored bytes are still on disk.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes stored bytes. A missing file is not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
