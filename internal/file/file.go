// Package file holds the directory-entry model: one File per entry with
// both lstat and follow-stat metadata.
package file

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// DircountUnknown marks a directory whose child count has not been loaded.
const DircountUnknown = -1

// File is a single directory entry. Files are created by loader workers
// while reading a directory and owned by the Dir that holds them.
type File struct {
	path string
	name string // display name; extended to a relative subpath by flatten
	ext  string

	lstat os.FileInfo
	stat  os.FileInfo // follows symlinks; equal to lstat for non-links

	linkTarget string
	broken     bool
	hidden     bool
	dircount   int
}

// New stats the entry name inside dir and builds a File. Returns an error
// if the entry cannot be lstat'ed (e.g. it was deleted mid-read).
func New(dir, name string) (*File, error) {
	path := filepath.Join(dir, name)
	lst, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	f := &File{
		path:     path,
		name:     name,
		lstat:    lst,
		stat:     lst,
		hidden:   strings.HasPrefix(name, "."),
		dircount: DircountUnknown,
	}

	if ext := filepath.Ext(name); ext != "" && ext != name {
		f.ext = ext
	}

	if lst.Mode()&os.ModeSymlink != 0 {
		if st, err := os.Stat(path); err == nil {
			f.stat = st
		} else {
			f.broken = true
		}
		if target, err := os.Readlink(path); err == nil {
			f.linkTarget = target
		} else {
			f.broken = true
		}
	}

	return f, nil
}

// Path returns the absolute path.
func (f *File) Path() string { return f.path }

// Name returns the display name. After a flattened load this is the
// path relative to the flattened root.
func (f *File) Name() string { return f.name }

// Ext returns the extension including the dot, or "".
func (f *File) Ext() string { return f.ext }

// IsDir reports whether the file, or its link target, is a directory.
func (f *File) IsDir() bool { return f.stat.IsDir() }

// IsLink reports whether the file is a symbolic link.
func (f *File) IsLink() bool { return f.lstat.Mode()&os.ModeSymlink != 0 }

// IsBroken reports whether the file is a symlink with an unreachable target.
func (f *File) IsBroken() bool { return f.broken }

// IsExec reports whether any execute bit is set on the (followed) file.
func (f *File) IsExec() bool { return f.stat.Mode()&0o111 != 0 }

// IsHidden reports whether the name starts with a dot. For flattened
// entries hidden-ness is inherited from intermediate directories.
func (f *File) IsHidden() bool { return f.hidden }

// LinkTarget returns the symlink target path, or "".
func (f *File) LinkTarget() string { return f.linkTarget }

// Size returns the size of the followed file.
func (f *File) Size() int64 { return f.stat.Size() }

// ModTime returns the modification time of the followed file.
func (f *File) ModTime() time.Time { return f.stat.ModTime() }

// Mode returns the lstat mode.
func (f *File) Mode() os.FileMode { return f.lstat.Mode() }

// Dircount returns the number of entries if the file is a directory and
// counts have been loaded, DircountUnknown otherwise.
func (f *File) Dircount() int { return f.dircount }

// SetDircount records the loaded child count. The loading worker calls it
// on Files it still owns; once a File belongs to a live Dir, only the
// main thread does.
func (f *File) SetDircount(n int) { f.dircount = n }

func (f *File) sys() *syscall.Stat_t {
	st, _ := f.stat.Sys().(*syscall.Stat_t)
	return st
}

// Ctime returns the status-change time of the followed file.
func (f *File) Ctime() time.Time {
	if st := f.sys(); st != nil {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return f.ModTime()
}

// Atime returns the access time of the followed file.
func (f *File) Atime() time.Time {
	if st := f.sys(); st != nil {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return f.ModTime()
}

// Nlink returns the link count.
func (f *File) Nlink() uint64 {
	if st := f.sys(); st != nil {
		return uint64(st.Nlink)
	}
	return 1
}

// SetName overrides the display name. Used by flattened loads to show the
// subpath relative to the flatten root.
func (f *File) SetName(name string) { f.name = name }

// SetHidden overrides hidden-ness. Entries inside hidden directories are
// themselves hidden in flattened listings.
func (f *File) SetHidden(hidden bool) { f.hidden = hidden }

// CountEntries counts the entries of the directory at path. Returns 0 for
// unreadable directories.
func CountEntries(path string) int {
	names, err := os.ReadDir(path)
	if err != nil {
		return 0
	}
	return len(names)
}
