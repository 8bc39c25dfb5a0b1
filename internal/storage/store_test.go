package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"data.csv", "data.csv"},
		{"../../etc/passwd", "passwd"},
		{"dir/inner.csv", "inner.csv"},
		{"bad\x00name.csv", "badname.csv"},
		{"..", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	t.Parallel()

	first := UniqueName("data.csv")
	second := UniqueName("data.csv")

	if first == second {
		t.Fatalf("unique names collided: %q", first)
	}
	if !strings.HasPrefix(first, "data_") || !strings.HasSuffix(first, ".csv") {
		t.Fatalf("unexpected shape: %q", first)
	}
}

func TestStore_SaveOpenRemove(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	content := "a,b\n1,2\n"
	path, size, err := store.Save("data.csv", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if size != int64(len(content)) {
		t.Fatalf("size mismatch: got %d want %d", size, len(content))
	}
	if filepath.Dir(path) != store.Dir() {
		t.Fatalf("file stored outside upload dir: %q", path)
	}
	if !store.Exists(path) {
		t.Fatalf("Exists reported false for stored file")
	}

	f, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	data, err := os.ReadFile(f.Name())
	f.Close()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) != content {
		t.Fatalf("content mismatch: got %q", data)
	}

	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if store.Exists(path) {
		t.Fatalf("file still exists after Remove")
	}

	// Removing again is not an error.
	if err := store.Remove(path); err != nil {
		t.Fatalf("second Remove error: %v", err)
	}
}

func TestStore_SaveRefusesOverwrite(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	if _, _, err := store.Save("same.csv", strings.NewReader("x")); err != nil {
		t.Fatalf("first Save error: %v", err)
	}
	if _, _, err := store.Save("same.csv", strings.NewReader("y")); err == nil {
		t.Fatalf("expected error when reusing a storage path")
	}
}

func TestStore_SaveSanitizesTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	path, _, err := store.Save("../escape.csv", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("traversal escaped upload dir: %q", path)
	}
}
