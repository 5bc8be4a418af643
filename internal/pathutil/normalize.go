package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize returns a canonical absolute path: "~" is expanded to $HOME,
// "." and ".." and repeated slashes are collapsed, and relative paths are
// resolved against base (or $PWD / the process working directory when base
// is empty). Symlinks are preserved.
func Normalize(path, base string) string {
	if path == "" {
		return path
	}
	path = ExpandHome(path)
	if !filepath.IsAbs(path) {
		if base == "" {
			if pwd := os.Getenv("PWD"); pwd != "" {
				base = pwd
			} else {
				base, _ = os.Getwd()
			}
		}
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

// ExpandHome replaces a leading "~" or "~/" with $HOME.
func ExpandHome(path string) string {
	if path == "~" {
		return os.Getenv("HOME")
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(os.Getenv("HOME"), path[2:])
	}
	return path
}

// Parent returns the parent directory of path, or "" for the root.
func Parent(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	return filepath.Dir(path)
}

// IsRoot reports whether path is the filesystem root.
func IsRoot(path string) bool {
	return path == "/"
}
