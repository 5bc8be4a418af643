// Package dirmodel implements the in-memory directory model: entries,
// sorting, filtering, cursor state, flattened listings and the
// update-merge applied when a fresh load replaces a live directory.
package dirmodel

import (
	"path/filepath"
	"time"

	"github.com/michaelscutari/fex/internal/file"
	"github.com/michaelscutari/fex/internal/filter"
)

// Settings are the per-directory sort options.
type Settings struct {
	Sort     SortType
	DirFirst bool
	Reverse  bool
	Hidden   bool
}

// DefaultSettings returns the out-of-the-box sort options.
func DefaultSettings() Settings {
	return Settings{Sort: SortNatural, DirFirst: true}
}

// Dir is one directory plus its UI state. All mutation happens on the
// main loop; workers only ever build fresh Dirs that are merged in via
// UpdateWith.
type Dir struct {
	Path string
	Name string

	allFiles    []*file.File // every entry read
	sortedFiles []*file.File // after sort
	files       []*file.File // after filter

	// Visible marks dirs currently shown so the cache keeps them alive.
	Visible bool

	LoadTime time.Time
	LoadIno  uint64 // inode of the directory at load time
	Updates  int    // applied update-merges; 0 while the initial load is in flight
	Err      error

	FlattenLevel int

	Ind int // cursor index into files
	Pos int // cursor row offset in the viewport
	sel string

	filter filter.Filter

	Settings Settings
	sorted   bool

	// Fileinfo is set once dir counts and link-target info are loaded.
	Fileinfo bool

	Loading           bool
	LastLoadingAction time.Time

	// Reload scheduler bookkeeping, owned by the loader.
	NextScheduledLoad time.Time
	NextRequestedLoad time.Time
	Scheduled         bool
}

// New creates an empty Dir in the loading state.
func New(path string) *Dir {
	return &Dir{
		Path:     path,
		Name:     filepath.Base(path),
		Settings: DefaultSettings(),
	}
}

// IsLoading reports whether the initial load has not completed yet.
func (d *Dir) IsLoading() bool { return d.Updates == 0 }

// IsRoot reports whether d is the filesystem root.
func (d *Dir) IsRoot() bool { return d.Path == "/" }

// ParentPath returns the path of d's parent, or "" for the root.
func (d *Dir) ParentPath() string {
	if d.IsRoot() {
		return ""
	}
	return filepath.Dir(d.Path)
}

// Files returns the visible (sorted and filtered) entries.
func (d *Dir) Files() []*file.File { return d.files }

// AllFiles returns every entry read, unsorted.
func (d *Dir) AllFiles() []*file.File { return d.allFiles }

// Length returns the number of visible entries.
func (d *Dir) Length() int { return len(d.files) }

// TotalLength returns the number of entries read, before filtering.
func (d *Dir) TotalLength() int { return len(d.allFiles) }

// CurrentFile returns the file under the cursor, or nil.
func (d *Dir) CurrentFile() *file.File {
	if d.Ind >= len(d.files) {
		return nil
	}
	return d.files[d.Ind]
}

// SetSortType changes the sort type and invalidates the sorted order.
func (d *Dir) SetSortType(t SortType) {
	if d.Settings.Sort != t {
		d.Settings.Sort = t
		d.sorted = false
	}
}

// SetFilter installs f (nil clears) and reapplies it.
func (d *Dir) SetFilter(f filter.Filter) {
	d.filter = f
	d.applyFilter()
}

// Filter returns the installed filter, or nil.
func (d *Dir) Filter() filter.Filter { return d.filter }

// FilterString returns the installed filter's input string, or "".
func (d *Dir) FilterString() string {
	if d.filter == nil {
		return ""
	}
	return d.filter.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CursorMoveBy moves the cursor by ct rows, keeping it scrolloff rows away
// from the viewport edges when possible.
func (d *Dir) CursorMoveBy(ct, height, scrolloff int) {
	if len(d.files) == 0 {
		d.Ind, d.Pos = 0, 0
		return
	}
	d.Ind = clamp(d.Ind+ct, 0, len(d.files)-1)
	if ct < 0 {
		d.Pos = min(max(scrolloff, d.Pos+ct), d.Ind)
	} else {
		d.Pos = max(min(height-1-scrolloff, d.Pos+ct), height-len(d.files)+d.Ind)
	}
	d.Pos = clamp(d.Pos, 0, max(height-1, 0))
}

// CursorMoveTo moves the cursor to the file called name. If the directory
// has not loaded yet the name is remembered and applied after the first
// update-merge. An absent name leaves the cursor clamped.
func (d *Dir) CursorMoveTo(name string, height, scrolloff int) {
	if name == "" {
		return
	}
	if d.IsLoading() {
		d.sel = name
		return
	}
	for i, f := range d.files {
		if f.Name() == name {
			d.CursorMoveBy(i-d.Ind, height, scrolloff)
			return
		}
	}
	d.Ind = clamp(d.Ind, 0, max(len(d.files)-1, 0))
}

// UpdateWith replaces d's contents with those of a freshly loaded update,
// preserving the cursor by file name. The update must not be used
// afterwards.
func (d *Dir) UpdateWith(update *Dir, height, scrolloff int) {
	if d.sel == "" && d.Ind < len(d.files) {
		d.sel = d.files[d.Ind].Name()
	}

	d.allFiles = update.allFiles
	d.sortedFiles = update.sortedFiles
	d.files = update.files
	d.LoadTime = update.LoadTime
	d.LoadIno = update.LoadIno
	d.Err = update.Err
	d.FlattenLevel = update.FlattenLevel
	if update.Fileinfo {
		d.Fileinfo = true
	}
	d.Updates++

	d.sorted = false
	d.Sort()

	if d.sel != "" {
		d.CursorMoveTo(d.sel, height, scrolloff)
		d.sel = ""
	}
}
