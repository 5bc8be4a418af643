package file

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := New(dir, "hello.txt")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Path() != path {
		t.Fatalf("path = %q, want %q", f.Path(), path)
	}
	if f.Name() != "hello.txt" || f.Ext() != ".txt" {
		t.Fatalf("name/ext = %q/%q", f.Name(), f.Ext())
	}
	if f.IsDir() || f.IsLink() || f.IsHidden() || f.IsBroken() {
		t.Fatal("unexpected flags on regular file")
	}
	if f.Size() != 2 {
		t.Fatalf("size = %d", f.Size())
	}
	if f.Dircount() != DircountUnknown {
		t.Fatalf("dircount = %d", f.Dircount())
	}
}

func TestNewHiddenAndDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	f, err := New(dir, ".config")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.IsHidden() || !f.IsDir() {
		t.Fatal("expected hidden directory")
	}
	if f.Ext() != "" {
		t.Fatalf("hidden file should have no ext, got %q", f.Ext())
	}
}

func TestNewSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	f, err := New(dir, "link")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.IsLink() || f.IsBroken() {
		t.Fatal("expected healthy symlink")
	}
	if !f.IsDir() {
		t.Fatal("link to directory should report IsDir")
	}
	if f.LinkTarget() != target {
		t.Fatalf("target = %q, want %q", f.LinkTarget(), target)
	}
}

func TestNewBrokenSymlink(t *testing.T) {
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(dir, "nope"), filepath.Join(dir, "dangling")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	f, err := New(dir, "dangling")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !f.IsLink() || !f.IsBroken() {
		t.Fatal("expected broken symlink")
	}
}

func TestCountEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if n := CountEntries(dir); n != 3 {
		t.Fatalf("CountEntries = %d, want 3", n)
	}
	if n := CountEntries(filepath.Join(dir, "missing")); n != 0 {
		t.Fatalf("CountEntries(missing) = %d, want 0", n)
	}
}
