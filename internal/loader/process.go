package loader

import (
	"time"

	"github.com/michaelscutari/fex/internal/async"
	"github.com/michaelscutari/fex/internal/hooks"
)

// ProcessResult applies a loader-owned result to the model and reports
// whether it handled the result. Runs on the main loop.
func (l *Loader) ProcessResult(res async.Result) bool {
	switch r := res.(type) {
	case *async.DirUpdateResult:
		l.processDirUpdate(r)
	case *async.DirFileinfoResult:
		l.processDirFileinfo(r)
	case *async.DirCheckResult:
		l.processDirCheck(r)
	case *async.PreviewUpdateResult:
		l.processPreviewUpdate(r)
	case *async.PreviewCheckResult:
		l.processPreviewCheck(r)
	default:
		return false
	}
	return true
}

func (l *Loader) processDirUpdate(r *async.DirUpdateResult) {
	if r.Version != l.dirs.Version() || r.Dir.FlattenLevel != r.Update.FlattenLevel {
		r.Destroy()
		return
	}

	r.Dir.Loading = false
	r.Dir.LastLoadingAction = time.Time{}
	r.Dir.UpdateWith(r.Update, l.Height, l.cfg.Scrolloff)
	l.hooks.Run1(hooks.DirUpdated, r.Dir.Path)
	l.DirLoadCallback(r.Dir)

	if l.OnDirUpdated != nil {
		l.OnDirUpdated(r.Dir)
	}
}

func (l *Loader) processDirFileinfo(r *async.DirFileinfoResult) {
	// Batches for a dir that was reloaded, dropped or re-flattened in
	// the meantime reference dead files and must be discarded.
	if r.Version != l.dirs.Version() ||
		r.Dir.Updates > 1 ||
		r.Level != r.Dir.FlattenLevel {
		r.Destroy()
		return
	}

	for _, c := range r.Counts {
		c.File.SetDircount(c.Count)
	}
	if r.Last {
		r.Dir.Fileinfo = true
	}
	if l.OnDirUpdated != nil {
		l.OnDirUpdated(r.Dir)
	}
}

func (l *Loader) processDirCheck(r *async.DirCheckResult) {
	if r.Changed {
		l.Reload(r.Dir)
	} else {
		r.Dir.LastLoadingAction = time.Time{}
	}
}

func (l *Loader) processPreviewUpdate(r *async.PreviewUpdateResult) {
	if r.Version != l.previews.Version() {
		r.Destroy()
		return
	}
	r.Preview.UpdateWith(r.Update)
	if l.OnPreviewUpdated != nil {
		l.OnPreviewUpdated(r.Preview)
	}
}

func (l *Loader) processPreviewCheck(r *async.PreviewCheckResult) {
	if pv, ok := l.previews.Get(r.Path); ok {
		l.ReloadPreview(pv)
	}
}
