package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenAppendCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	f, err := OpenAppend(path)
	if err != nil {
		t.Fatalf("OpenAppend() error = %v", err)
	}
	f.Close()
	if !Exists(path) {
		t.Fatalf("Exists(%q) = false after OpenAppend", path)
	}
}

func TestSizeReflectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	f, err := OpenAppend(path)
	if err != nil {
		t.Fatalf("OpenAppend() error = %v", err)
	}
	if _, err := f.WriteString("hello"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	f.Close()

	sz, err := Size(path)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if sz != 5 {
		t.Fatalf("Size() = %d, want 5", sz)
	}
}

func TestSameFileIdentifiesHardLinksAndDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	if f, err := OpenAppend(a); err != nil {
		t.Fatalf("OpenAppend(a) error = %v", err)
	} else {
		f.Close()
	}
	if err := os.Link(a, b); err != nil {
		t.Skipf("hard links unsupported on this filesystem: %v", err)
	}
	if !SameFile(a, b) {
		t.Fatalf("SameFile(a, b) = false for hard-linked paths")
	}

	c := filepath.Join(dir, "c.log")
	if f, err := OpenAppend(c); err != nil {
		t.Fatalf("OpenAppend(c) error = %v", err)
	} else {
		f.Close()
	}
	if SameFile(a, c) {
		t.Fatalf("SameFile(a, c) = true for distinct files")
	}
}

func TestFirstFreeArchiveNameAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, ok := FirstFreeArchiveName(path, ts)
	if !ok {
		t.Fatalf("FirstFreeArchiveName() ok = false")
	}
	if f, err := os.Create(first); err != nil {
		t.Fatalf("creating collision file: %v", err)
	} else {
		f.Close()
	}

	second, ok := FirstFreeArchiveName(path, ts)
	if !ok {
		t.Fatalf("FirstFreeArchiveName() ok = false after a collision")
	}
	if second == first {
		t.Fatalf("FirstFreeArchiveName() returned a colliding name twice: %q", second)
	}
}

func TestRenameMovesFile(t *testing.T) {
	dir := t.TempDir()
	oldpath := filepath.Join(dir, "old.log")
	newpath := filepath.Join(dir, "new.log")
	if f, err := OpenAppend(oldpath); err != nil {
		t.Fatalf("OpenAppend() error = %v", err)
	} else {
		f.Close()
	}
	if err := Rename(oldpath, newpath); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if Exists(oldpath) || !Exists(newpath) {
		t.Fatalf("Rename() did not move the file")
	}
}
