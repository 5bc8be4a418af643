package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		path, base, want string
	}{
		{"/a/b/../c", "", "/a/c"},
		{"/a//b/./c", "", "/a/b/c"},
		{"b/c", "/a", "/a/b/c"},
		{".", "/a/b", "/a/b"},
		{"..", "/a/b", "/a"},
		{"/", "", "/"},
	}
	for _, c := range cases {
		if got := Normalize(c.path, c.base); got != c.want {
			t.Fatalf("Normalize(%q, %q) = %q, want %q", c.path, c.base, got, c.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		t.Skip("HOME not set")
	}
	if got := ExpandHome("~"); got != home {
		t.Fatalf("ExpandHome(~) = %q, want %q", got, home)
	}
	if got := ExpandHome("~/x"); got != filepath.Join(home, "x") {
		t.Fatalf("ExpandHome(~/x) = %q", got)
	}
	if got := ExpandHome("/etc"); got != "/etc" {
		t.Fatalf("ExpandHome(/etc) = %q", got)
	}
}

func TestParent(t *testing.T) {
	if got := Parent("/a/b"); got != "/a" {
		t.Fatalf("Parent(/a/b) = %q", got)
	}
	if got := Parent("/"); got != "" {
		t.Fatalf("Parent(/) = %q, want empty", got)
	}
	if !IsRoot("/") || IsRoot("/a") {
		t.Fatal("IsRoot misbehaves")
	}
}
