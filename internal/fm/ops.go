package fm

import (
	"strings"

	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/filter"
)

// Filter applies a substring filter to the current directory. An empty
// string clears the filter.
func (f *Fm) Filter(input string) {
	d := f.CurrentDir()
	if input == "" {
		d.SetFilter(nil)
	} else {
		d.SetFilter(filter.NewSubstring(input))
	}
	f.UpdatePreview()
}

// Fuzzy applies a fuzzy filter to the current directory.
func (f *Fm) Fuzzy(input string) {
	d := f.CurrentDir()
	if input == "" {
		d.SetFilter(nil)
	} else {
		d.SetFilter(filter.NewFuzzy(input))
	}
	f.UpdatePreview()
}

// FilterString returns the current directory's filter input.
func (f *Fm) FilterString() string { return f.CurrentDir().FilterString() }

func (f *Fm) sortAndReselect(d *dirmodel.Dir) {
	if d == nil {
		return
	}
	d.Settings.Hidden = f.cfg.Hidden
	cur := d.CurrentFile()
	d.Sort()
	if cur != nil {
		d.CursorMoveTo(cur.Name(), f.Height, f.cfg.Scrolloff)
	}
}

// Sort re-sorts every visible directory, keeping cursors on their files.
func (f *Fm) Sort() {
	for _, d := range f.visible {
		f.sortAndReselect(d)
	}
	f.sortAndReselect(f.previewDir)
}

// SetHidden toggles hidden files globally.
func (f *Fm) SetHidden(hidden bool) {
	f.cfg.Hidden = hidden
	f.Sort()
	f.UpdatePreview()
}

// SetSortType changes the sort type of every visible directory.
func (f *Fm) SetSortType(t dirmodel.SortType) {
	for _, d := range f.visible {
		if d != nil {
			d.SetSortType(t)
		}
	}
	if f.previewDir != nil {
		f.previewDir.SetSortType(t)
	}
	f.Sort()
}

/* find */

// Find moves the cursor to the next entry whose name starts with prefix,
// case-insensitively, scanning forward from the cursor and wrapping.
// Reports whether a match was found and whether it was the only one.
func (f *Fm) Find(prefix string) (found, unique bool) {
	if prefix == "" {
		return false, false
	}
	d := f.CurrentDir()
	files := d.Files()
	if len(files) == 0 {
		return false, false
	}

	needle := strings.ToLower(prefix)
	matches := 0
	first := -1
	for i := range files {
		idx := (d.Ind + i) % len(files)
		if strings.HasPrefix(strings.ToLower(files[idx].Name()), needle) {
			if first == -1 {
				first = idx
			}
			matches++
		}
	}
	if first == -1 {
		return false, false
	}
	f.CursorMove(first - d.Ind)
	return true, matches == 1
}

/* scrolling */

// ScrollUp scrolls the viewport up one row, keeping the cursor on its
// file when possible.
func (f *Fm) ScrollUp() {
	d := f.CurrentDir()
	top := d.Ind - d.Pos
	if top <= 0 {
		return
	}
	d.Pos++
	if d.Pos > f.Height-1-f.cfg.Scrolloff {
		f.CursorMove(-1)
		d.Pos--
	}
}

// ScrollDown scrolls the viewport down one row, keeping the cursor on its
// file when possible.
func (f *Fm) ScrollDown() {
	d := f.CurrentDir()
	top := d.Ind - d.Pos
	if top+f.Height >= d.Length() {
		return
	}
	if d.Pos > 0 {
		d.Pos--
	}
	if d.Pos < f.cfg.Scrolloff {
		f.CursorMove(1)
		d.Pos = f.cfg.Scrolloff
	}
}

/* marks */

// MarkSave records path (or the current directory when empty) under mark.
func (f *Fm) MarkSave(mark rune, path string) {
	if path == "" {
		path = f.pwd
	}
	f.marks[mark] = path
}

// MarkGet returns the path recorded under mark.
func (f *Fm) MarkGet(mark rune) (string, bool) {
	path, ok := f.marks[mark]
	return path, ok
}

// MarkJump changes to the directory recorded under mark.
func (f *Fm) MarkJump(mark rune) bool {
	path, ok := f.marks[mark]
	if !ok {
		return false
	}
	f.ChdirAsync(path, true, true)
	return true
}
