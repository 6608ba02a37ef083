package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindRecursiveCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "b.PDF"))
	touch(t, filepath.Join(root, "sub", "deep", "c.Pdf"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub", "image.png"))

	files, err := Find(root)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	sort.Strings(files)
	want := []string{"a.pdf", "b.PDF", filepath.Join("sub", "deep", "c.Pdf")}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("file %d: got %q, want %q", i, files[i], want[i])
		}
	}
}

func TestFindCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs_import")

	_, err := Find(root)
	if !errors.Is(err, ErrRootCreated) {
		t.Fatalf("expected ErrRootCreated, got %v", err)
	}

	info, statErr := os.Stat(root)
	if statErr != nil {
		t.Fatalf("root was not created: %v", statErr)
	}
	if !info.IsDir() {
		t.Fatal("created root is not a directory")
	}
}

func TestFindEmptyRoot(t *testing.T) {
	files, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestFindRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-a-dir")
	touch(t, root)

	if _, err := Find(root); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}
