package fm

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/michaelscutari/fex/internal/hooks"
)

// Selection returns the selected paths in insertion order.
func (f *Fm) Selection() []string { return f.selection.Paths() }

// SelectionContains reports whether path is selected.
func (f *Fm) SelectionContains(path string) bool {
	return f.selection.Contains(path)
}

func (f *Fm) selectionChanged() {
	f.hooks.Run(hooks.SelectionChanged)
}

// SelectionAdd selects path if it is not selected already.
func (f *Fm) SelectionAdd(path string) {
	if f.selection.Add(path) {
		f.selectionChanged()
	}
}

// SelectionToggle flips the selection state of path.
func (f *Fm) SelectionToggle(path string) {
	f.selection.Toggle(path)
	f.selectionChanged()
}

// SelectionToggleCurrent toggles the file under the cursor. Disabled in
// visual mode.
func (f *Fm) SelectionToggleCurrent() {
	if f.visualActive {
		return
	}
	if cur := f.CurrentFile(); cur != nil {
		f.SelectionToggle(cur.Path())
	}
}

// SelectionClear unselects everything.
func (f *Fm) SelectionClear() {
	if f.selection.Len() == 0 {
		return
	}
	f.selection.Clear()
	f.selectionChanged()
}

// SelectionReverse toggles every visible entry of the current directory.
func (f *Fm) SelectionReverse() {
	for _, fl := range f.CurrentDir().Files() {
		f.selection.Toggle(fl.Path())
	}
	f.selectionChanged()
}

// SelectionSet replaces the selection.
func (f *Fm) SelectionSet(paths []string) {
	f.selection.Clear()
	for _, p := range paths {
		f.selection.Add(p)
	}
	f.selectionChanged()
}

// SelectionWrite writes the selection, or the current file when nothing
// is selected, to path, one path per line. Parent directories are
// created as needed.
func (f *Fm) SelectionWrite(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var b strings.Builder
	if f.selection.Len() > 0 {
		for _, p := range f.selection.Paths() {
			b.WriteString(p)
			b.WriteByte('\n')
		}
	} else if cur := f.CurrentFile(); cur != nil {
		b.WriteString(cur.Path())
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

/* visual mode */

// VisualActive reports whether visual selection mode is on.
func (f *Fm) VisualActive() bool { return f.visualActive }

// SelectionVisualStart enters visual mode anchored at the cursor. The
// current selection is snapshotted; snapshot members are never unselected
// while visual mode runs.
func (f *Fm) SelectionVisualStart() {
	if f.visualActive {
		return
	}
	d := f.CurrentDir()
	if d.Length() == 0 {
		return
	}
	f.visualActive = true
	f.visualAnchor = d.Ind
	f.SelectionAdd(d.Files()[d.Ind].Path())
	f.prevSelection = make(map[string]bool, f.selection.Len())
	for _, p := range f.selection.Paths() {
		f.prevSelection[p] = true
	}
	f.hooks.Run1(hooks.ModeChanged, "visual")
}

// SelectionVisualStop leaves visual mode. The selection itself is kept.
func (f *Fm) SelectionVisualStop() {
	if !f.visualActive {
		return
	}
	f.visualActive = false
	f.visualAnchor = 0
	// the pre-entry selection is a subset of the current one
	f.prevSelection = nil
	f.hooks.Run1(hooks.ModeChanged, "normal")
}

// SelectionVisualToggle flips visual mode.
func (f *Fm) SelectionVisualToggle() {
	if f.visualActive {
		f.SelectionVisualStop()
	} else {
		f.SelectionVisualStart()
	}
}

// visualUpdate toggles membership for the entries the cursor passed over
// between from and to, relative to the anchor. Paths that were selected
// when visual mode started are never unselected.
func (f *Fm) visualUpdate(anchor, from, to int) {
	var lo, hi int
	switch {
	case from >= anchor && to > from:
		lo, hi = from+1, to
	case from >= anchor && to < anchor:
		lo, hi = to, from
	case from >= anchor:
		lo, hi = to+1, from
	case from < anchor && to < from:
		lo, hi = to, from-1
	case from < anchor && to > anchor:
		lo, hi = from, to
	default:
		lo, hi = from, to-1
	}

	d := f.CurrentDir()
	files := d.Files()
	changed := false
	for ; lo <= hi; lo++ {
		if lo < 0 || lo >= len(files) {
			continue
		}
		path := files[lo].Path()
		if f.prevSelection[path] {
			continue
		}
		f.selection.Toggle(path)
		changed = true
	}
	if changed {
		f.selectionChanged()
	}
}

/* paste buffer */

// PasteBuffer returns the paste buffer paths in insertion order.
func (f *Fm) PasteBuffer() []string { return f.paste.Paths() }

// PasteModeGet returns the paste buffer mode.
func (f *Fm) PasteModeGet() PasteMode { return f.pasteMode }

// PasteSet fills the paste buffer from the selection (or the current
// file) with the given mode and clears the selection.
func (f *Fm) PasteSet(mode PasteMode) {
	f.paste.Clear()
	f.pasteMode = mode
	if f.selection.Len() > 0 {
		for _, p := range f.selection.Paths() {
			f.paste.Add(p)
		}
		f.SelectionClear()
	} else if cur := f.CurrentFile(); cur != nil {
		f.paste.Add(cur.Path())
	}
	f.hooks.Run(hooks.PasteBufChange)
}

// PasteBufferSet replaces the paste buffer contents.
func (f *Fm) PasteBufferSet(paths []string, mode PasteMode) {
	f.paste.Clear()
	f.pasteMode = mode
	for _, p := range paths {
		f.paste.Add(p)
	}
	f.hooks.Run(hooks.PasteBufChange)
}

// PasteBufferAdd appends a path to the paste buffer.
func (f *Fm) PasteBufferAdd(path string) {
	f.paste.Add(path)
	f.hooks.Run(hooks.PasteBufChange)
}

// PasteBufferClear empties the paste buffer.
func (f *Fm) PasteBufferClear() {
	if f.paste.Len() == 0 {
		return
	}
	f.paste.Clear()
	f.hooks.Run(hooks.PasteBufChange)
}
