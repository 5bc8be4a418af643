// Package fm holds the visible state of the file manager: the column
// stack of directories, the selection and paste buffers, marks and the
// working directory.
package fm

import (
	"fmt"
	"os"

	"github.com/michaelscutari/fex/internal/async"
	"github.com/michaelscutari/fex/internal/config"
	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/file"
	"github.com/michaelscutari/fex/internal/hooks"
	"github.com/michaelscutari/fex/internal/loader"
	"github.com/michaelscutari/fex/internal/notify"
	"github.com/michaelscutari/fex/internal/pathutil"
)

// PasteMode distinguishes copy from move paste buffers.
type PasteMode uint8

const (
	PasteCopy PasteMode = iota
	PasteMove
)

func (m PasteMode) String() string {
	if m == PasteMove {
		return "move"
	}
	return "copy"
}

// ChdirError wraps a failed directory change.
type ChdirError struct {
	Path string
	Err  error
}

func (e *ChdirError) Error() string {
	return fmt.Sprintf("chdir %s: %v", e.Path, e.Err)
}

func (e *ChdirError) Unwrap() error { return e.Err }

// Fm is the filesystem manager. Main-thread-only.
type Fm struct {
	cfg    *config.Config
	loader *loader.Loader
	notify *notify.Notify
	hooks  *hooks.Registry
	async  *async.Async

	Height int

	// pwd is where the user navigated to; the process working directory
	// follows once the target is known reachable.
	pwd string

	// visible[0] is the current directory, further entries its parents,
	// nearest first and the one closest to the root last. The preview
	// column is separate.
	visible []*dirmodel.Dir

	previewDir *dirmodel.Dir
	// previewVersion bumps whenever previewDir changes so stale results
	// aimed at an old preview dir can be recognized.
	previewVersion uint64

	selection     *PathSet
	prevSelection map[string]bool
	visualActive  bool
	visualAnchor  int

	paste     *PathSet
	pasteMode PasteMode

	marks    map[rune]string
	automark string

	pendingChdir string

	// Message is the last user-facing error, shown on the status line.
	Message string
}

// New creates an Fm rooted at startPath ("" means $PWD).
func New(cfg *config.Config, l *loader.Loader, n *notify.Notify, reg *hooks.Registry, a *async.Async, startPath string) *Fm {
	f := &Fm{
		cfg:       cfg,
		loader:    l,
		notify:    n,
		hooks:     reg,
		async:     a,
		Height:    24,
		selection: NewPathSet(),
		paste:     NewPathSet(),
		marks:     make(map[rune]string),
	}

	pwd := startPath
	if pwd == "" {
		pwd = os.Getenv("PWD")
	}
	if pwd == "" {
		pwd, _ = os.Getwd()
	}
	f.pwd = pathutil.Normalize(pwd, "")
	if err := os.Chdir(f.pwd); err == nil {
		os.Setenv("PWD", f.pwd)
	}

	f.populate()
	f.UpdateWatchers()
	f.UpdatePreview()
	return f
}

func (f *Fm) columns() int {
	n := len(f.cfg.Ratios)
	if f.cfg.Preview {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (f *Fm) populate() {
	n := f.columns()
	f.visible = make([]*dirmodel.Dir, n)

	d := f.loader.DirFromPath(f.pwd)
	d.Visible = true
	f.visible[0] = d
	for i := 1; i < n; i++ {
		parent := f.visible[i-1].ParentPath()
		if parent == "" {
			break
		}
		p := f.loader.DirFromPath(parent)
		p.Visible = true
		p.CursorMoveTo(f.visible[i-1].Name, f.Height, f.cfg.Scrolloff)
		f.visible[i] = p
	}
}

func (f *Fm) releaseVisible() {
	for _, d := range f.visible {
		if d != nil {
			d.Visible = false
		}
	}
	f.removePreviewDir()
}

// Recol re-derives the visible columns from the cache after the column
// configuration changed.
func (f *Fm) Recol() {
	f.releaseVisible()
	f.populate()
	f.UpdateWatchers()
	f.UpdatePreview()
}

// CurrentDir returns the current directory. Never nil.
func (f *Fm) CurrentDir() *dirmodel.Dir { return f.visible[0] }

// CurrentFile returns the file under the cursor, or nil.
func (f *Fm) CurrentFile() *file.File { return f.CurrentDir().CurrentFile() }

// VisibleDirs returns the visible columns, current first, then parents.
func (f *Fm) VisibleDirs() []*dirmodel.Dir { return f.visible }

// PreviewDir returns the directory shown in the preview column, or nil.
func (f *Fm) PreviewDir() *dirmodel.Dir { return f.previewDir }

// PreviewVersion returns the preview-dir generation counter.
func (f *Fm) PreviewVersion() uint64 { return f.previewVersion }

// Pwd returns the user-visible working directory.
func (f *Fm) Pwd() string { return f.pwd }

// IsVisible reports whether d is one of the visible columns.
func (f *Fm) IsVisible(d *dirmodel.Dir) bool {
	for _, v := range f.visible {
		if v == d {
			return true
		}
	}
	return d == f.previewDir
}

// UpdateWatchers replaces the watcher set with the visible columns. The
// actual watch registration goes through a worker so slow mounts cannot
// stall the main loop.
func (f *Fm) UpdateWatchers() {
	f.notify.RemoveAll()
	for _, d := range f.visible {
		if d != nil {
			f.async.NotifyAdd(d)
		}
	}
}

func (f *Fm) removePreviewDir() {
	if f.previewDir == nil {
		return
	}
	inColumns := false
	for _, v := range f.visible {
		if v != nil && v.Path == f.previewDir.Path {
			inColumns = true
			break
		}
	}
	if !inColumns {
		f.notify.RemoveWatch(f.previewDir)
		f.previewDir.Visible = false
	}
	f.previewDir = nil
	f.previewVersion++
}

// UpdatePreview points the preview column at the directory under the
// cursor, or removes it when the cursor rests on a file.
func (f *Fm) UpdatePreview() {
	if !f.cfg.Preview {
		f.removePreviewDir()
		return
	}

	cur := f.CurrentFile()
	if cur != nil && cur.IsDir() {
		if f.previewDir != nil && f.previewDir.Path == cur.Path() {
			return
		}
		f.removePreviewDir()
		d := f.loader.DirFromPath(cur.Path())
		d.Visible = true
		f.previewDir = d
		f.previewVersion++
		f.async.NotifyAdd(d)
		return
	}

	f.removePreviewDir()
}

// CursorMove moves the cursor in the current directory, keeping the
// visual selection and the preview column in sync. Reports whether the
// cursor moved.
func (f *Fm) CursorMove(ct int) bool {
	d := f.CurrentDir()
	cur := d.Ind
	d.CursorMoveBy(ct, f.Height, f.cfg.Scrolloff)
	if d.Ind == cur {
		return false
	}
	if f.visualActive {
		f.visualUpdate(f.visualAnchor, cur, d.Ind)
	}
	f.UpdatePreview()
	return true
}

// CursorMoveTo moves the cursor to the named file in the current dir.
func (f *Fm) CursorMoveTo(name string) {
	f.CurrentDir().CursorMoveTo(name, f.Height, f.cfg.Scrolloff)
	f.UpdatePreview()
}

// Top moves the cursor to the first entry.
func (f *Fm) Top() bool { return f.CursorMove(-f.CurrentDir().Ind) }

// Bot moves the cursor to the last entry.
func (f *Fm) Bot() bool {
	d := f.CurrentDir()
	return f.CursorMove(d.Length() - d.Ind)
}

// Open returns the current file when it is a plain file so the caller can
// open it; directories are entered instead and nil is returned.
func (f *Fm) Open() *file.File {
	cur := f.CurrentFile()
	if cur == nil {
		return nil
	}
	if cur.IsDir() {
		f.ChdirAsync(cur.Path(), true, true)
		return nil
	}
	return cur
}

// Updir changes to the parent directory. A no-op at the root.
func (f *Fm) Updir() bool {
	d := f.CurrentDir()
	if d.IsRoot() {
		return false
	}
	name := d.Name
	f.ChdirSync(d.ParentPath(), false, true)
	f.CursorMoveTo(name)
	return true
}

/* chdir */

// ChdirAsync changes directory through a worker stat: the switch is
// applied when the result arrives and the target is still wanted. save
// records the automark.
func (f *Fm) ChdirAsync(path string, save, hook bool) {
	f.SelectionVisualStop()
	path = pathutil.Normalize(path, f.pwd)
	if hook {
		f.hooks.Run(hooks.ChdirPre)
	}
	f.pendingChdir = path
	f.async.Chdir(path, f.pwd, save, hook)
}

// ChdirSync changes directory inline, without a worker round trip. Updir
// uses it.
func (f *Fm) ChdirSync(path string, save, hook bool) bool {
	f.SelectionVisualStop()
	path = pathutil.Normalize(path, f.pwd)
	if hook {
		f.hooks.Run(hooks.ChdirPre)
	}
	st, err := os.Stat(path)
	if err != nil || !st.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		f.Message = (&ChdirError{Path: path, Err: err}).Error()
		return false
	}
	f.pendingChdir = ""
	f.applyChdir(path, save, hook)
	return true
}

// ProcessChdir applies an asynchronous chdir result. Superseded results
// (a newer chdir was requested meanwhile) are dropped.
func (f *Fm) ProcessChdir(r *async.ChdirResult) {
	if r.Path != f.pendingChdir {
		return
	}
	f.pendingChdir = ""
	if r.Err != nil {
		// stay at the origin
		f.Message = (&ChdirError{Path: r.Path, Err: r.Err}).Error()
		return
	}
	f.applyChdir(r.Path, r.Save, r.Hook)
}

func (f *Fm) applyChdir(path string, save, hook bool) {
	if err := os.Chdir(path); err != nil {
		f.Message = (&ChdirError{Path: path, Err: err}).Error()
		return
	}
	os.Setenv("PWD", path)

	if save && f.CurrentDir().Err == nil {
		f.automark = f.pwd
		f.marks['\''] = f.pwd
	}

	f.pwd = path
	f.releaseVisible()
	f.populate()
	f.UpdateWatchers()
	f.UpdatePreview()
	if hook {
		f.hooks.Run1(hooks.ChdirPost, path)
	}
}

// JumpAutomark returns to the previous directory.
func (f *Fm) JumpAutomark() bool {
	if f.automark == "" {
		return false
	}
	f.ChdirAsync(f.automark, true, true)
	return true
}

// DropCaches discards both caches and reloads the visible directories
// from disk.
func (f *Fm) DropCaches() {
	f.notify.RemoveAll()
	f.previewDir = nil
	f.previewVersion++
	f.loader.DropDirCache()
	f.loader.DropPreviewCache()
	f.populate()
	f.UpdateWatchers()
	f.UpdatePreview()
}

// Reload forces a reload of every visible directory.
func (f *Fm) Reload() {
	for _, d := range f.visible {
		if d != nil {
			d.FlattenLevel = 0
			d.Loading = true
			f.async.DirLoad(d, true)
		}
	}
	if f.previewDir != nil {
		f.previewDir.FlattenLevel = 0
		f.previewDir.Loading = true
		f.async.DirLoad(f.previewDir, true)
	}
}

// CheckDirs submits freshness checks for every visible directory, e.g.
// after the terminal regains focus.
func (f *Fm) CheckDirs() {
	for _, d := range f.visible {
		if d != nil && !d.IsLoading() {
			f.async.DirCheck(d)
		}
	}
	if f.previewDir != nil && !f.previewDir.IsLoading() {
		f.async.DirCheck(f.previewDir)
	}
}

// Flatten re-loads the current directory flattened to the given level.
func (f *Fm) Flatten(level int) {
	if level < 0 {
		level = 0
	}
	d := f.CurrentDir()
	d.FlattenLevel = level
	d.Loading = true
	f.async.DirLoad(d, true)
}

// Resize updates the viewport height.
func (f *Fm) Resize(height int) {
	f.Height = height
}
