package loader

import (
	"time"

	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/preview"
)

// Reload schedules a throttled reload of d. Bursts of requests collapse
// into at most one reload per timeout window; a request arriving while a
// load is in flight is remembered and fired from the load callback. At
// most one load per directory is ever in flight.
func (l *Loader) Reload(d *dirmodel.Dir) {
	if d.Scheduled {
		return
	}

	now := time.Now()
	timeout := l.cfg.InotifyTimeout()
	latest := d.NextScheduledLoad

	// a reload is already queued far enough in the future; coalesce
	if !latest.IsZero() && !latest.Before(now.Add(timeout)) {
		return
	}

	// small quiet time so files that exist only briefly never show up
	var next time.Time
	if now.Before(latest.Add(timeout)) {
		next = latest.Add(timeout + l.cfg.InotifyDelay())
	} else {
		next = now.Add(l.cfg.InotifyDelay())
	}

	if d.Loading {
		d.NextRequestedLoad = next
	} else {
		l.scheduleDirLoad(d, next)
	}
}

func (l *Loader) scheduleDirLoad(d *dirmodel.Dir, at time.Time) {
	delay := time.Until(at)
	l.dirTimers[d] = time.AfterFunc(delay, func() {
		l.async.Call(func() { l.dirTimerFired(d) })
	})
	d.NextScheduledLoad = at
	d.NextRequestedLoad = time.Time{}
	d.Scheduled = true
}

// dirTimerFired runs on the main loop when a scheduled reload comes due.
func (l *Loader) dirTimerFired(d *dirmodel.Dir) {
	if _, ok := l.dirTimers[d]; !ok {
		// cancelled by a cache drop or reschedule after the fire raced in
		return
	}
	delete(l.dirTimers, d)
	l.async.DirLoad(d, true)
	d.Scheduled = false
	d.Loading = true
}

// DirLoadCallback runs after a load result for d has been applied. It
// fires the reload that was requested while the load was in flight, if
// any.
func (l *Loader) DirLoadCallback(d *dirmodel.Dir) {
	d.Scheduled = false
	if d.NextRequestedLoad.IsZero() {
		return
	}
	now := time.Now()
	if !d.NextRequestedLoad.After(now) {
		l.async.DirLoad(d, true)
		d.NextScheduledLoad = now
		d.NextRequestedLoad = time.Time{}
		d.Loading = true
	} else {
		l.scheduleDirLoad(d, d.NextRequestedLoad)
	}
}

// ReloadPreview schedules a throttled reload of pv under the same
// coalescing rule as directory reloads.
func (l *Loader) ReloadPreview(pv *preview.Preview) {
	now := time.Now()
	timeout := l.cfg.InotifyTimeout()
	latest := pv.Next

	if !latest.IsZero() && !latest.Before(now.Add(timeout)) {
		return
	}

	var next time.Time
	if now.Before(latest.Add(timeout)) {
		next = latest.Add(timeout + l.cfg.InotifyDelay())
	} else {
		next = now.Add(l.cfg.InotifyDelay())
	}

	l.previewTimers[pv] = time.AfterFunc(time.Until(next), func() {
		l.async.Call(func() { l.previewTimerFired(pv) })
	})
	pv.Next = next
}

func (l *Loader) previewTimerFired(pv *preview.Preview) {
	if _, ok := l.previewTimers[pv]; !ok {
		return
	}
	delete(l.previewTimers, pv)
	l.async.PreviewLoad(pv, l.PreviewHeight, l.PreviewWidth, l.previewOptions())
}

// DropDirCache destroys every cached Dir, bumps the cache version so
// in-flight results are discarded, and cancels all scheduled reloads.
func (l *Loader) DropDirCache() {
	l.dirs.Drop()
	for d, timer := range l.dirTimers {
		timer.Stop()
		delete(l.dirTimers, d)
	}
}

// DropPreviewCache is the preview-side counterpart of DropDirCache.
func (l *Loader) DropPreviewCache() {
	l.previews.Drop()
	for pv, timer := range l.previewTimers {
		timer.Stop()
		delete(l.previewTimers, pv)
	}
}

// Reschedule cancels every pending reload timer and re-arms each affected
// dir and preview at now + timeout + delay. Called after the throttle
// configuration changes.
func (l *Loader) Reschedule() {
	next := time.Now().Add(l.cfg.InotifyTimeout() + l.cfg.InotifyDelay())

	dirs := make([]*dirmodel.Dir, 0, len(l.dirTimers))
	for d, timer := range l.dirTimers {
		timer.Stop()
		delete(l.dirTimers, d)
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		l.scheduleDirLoad(d, next)
	}

	previews := make([]*preview.Preview, 0, len(l.previewTimers))
	for pv, timer := range l.previewTimers {
		timer.Stop()
		delete(l.previewTimers, pv)
		previews = append(previews, pv)
	}
	for _, pv := range previews {
		pv.Next = next
		l.previewTimers[pv] = time.AfterFunc(time.Until(next), func() {
			l.async.Call(func() { l.previewTimerFired(pv) })
		})
	}
}
