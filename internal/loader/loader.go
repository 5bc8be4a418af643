// Package loader creates directories and previews on demand, throttles
// their reloads and applies worker results to the live model. All methods
// are main-thread-only; timers marshal themselves back onto the main loop
// through the async queue.
package loader

import (
	"time"

	"github.com/michaelscutari/fex/internal/async"
	"github.com/michaelscutari/fex/internal/cache"
	"github.com/michaelscutari/fex/internal/config"
	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/hooks"
	"github.com/michaelscutari/fex/internal/pathutil"
	"github.com/michaelscutari/fex/internal/preview"
)

// Loader owns the directory and preview caches and the reload scheduler.
type Loader struct {
	async *async.Async
	cfg   *config.Config
	hooks *hooks.Registry

	dirs     *cache.Cache[*dirmodel.Dir]
	previews *cache.Cache[*preview.Preview]

	dirTimers     map[*dirmodel.Dir]*time.Timer
	previewTimers map[*preview.Preview]*time.Timer

	// Viewport geometry, updated on resize.
	Height        int
	PreviewHeight int
	PreviewWidth  int

	// OnDirUpdated fires after a replacement is merged into a live Dir.
	OnDirUpdated func(d *dirmodel.Dir)
	// OnPreviewUpdated fires after a preview replacement is applied.
	OnPreviewUpdated func(pv *preview.Preview)
	// OnLoadingStarted fires when a first-time load begins, so the UI can
	// arm its loading-indicator timer.
	OnLoadingStarted func()
	// ImageSupport reports whether the renderer can draw images.
	ImageSupport bool
}

// New creates a Loader and wires the async version sources to its caches.
func New(a *async.Async, cfg *config.Config, reg *hooks.Registry) *Loader {
	l := &Loader{
		async:         a,
		cfg:           cfg,
		hooks:         reg,
		dirs:          cache.New[*dirmodel.Dir](nil),
		previews:      cache.New[*preview.Preview](nil),
		dirTimers:     make(map[*dirmodel.Dir]*time.Timer),
		previewTimers: make(map[*preview.Preview]*time.Timer),
		Height:        24,
		PreviewHeight: 24,
		PreviewWidth:  80,
	}
	a.DirVersion = l.dirs.Version
	a.PreviewVersion = l.previews.Version
	return l
}

// Dirs returns the directory cache.
func (l *Loader) Dirs() *cache.Cache[*dirmodel.Dir] { return l.dirs }

// Previews returns the preview cache.
func (l *Loader) Previews() *cache.Cache[*preview.Preview] { return l.previews }

func (l *Loader) settingsFor(path string) dirmodel.Settings {
	s := dirmodel.Settings{
		Sort:     dirmodel.ParseSortType(l.cfg.Sort),
		DirFirst: l.cfg.DirFirst,
		Reverse:  l.cfg.Reverse,
		Hidden:   l.cfg.Hidden,
	}
	if ds, ok := l.cfg.DirSettings[path]; ok {
		if ds.Sort != "" {
			s.Sort = dirmodel.ParseSortType(ds.Sort)
		}
		if ds.DirFirst != nil {
			s.DirFirst = *ds.DirFirst
		}
		if ds.Reverse != nil {
			s.Reverse = *ds.Reverse
		}
		if ds.Hidden != nil {
			s.Hidden = *ds.Hidden
		}
	}
	return s
}

// DirFromPath returns the cached Dir for path, creating and loading it on
// demand. Already-loaded dirs get a cheap freshness check.
func (l *Loader) DirFromPath(path string) *dirmodel.Dir {
	path = pathutil.Normalize(path, "")

	if d, ok := l.dirs.Get(path); ok {
		if !d.IsLoading() {
			// never check while the initial load is still in flight
			l.async.DirCheck(d)
		}
		d.Settings.Hidden = l.cfg.Hidden
		d.Sort()
		return d
	}

	d := dirmodel.New(path)
	d.Settings = l.settingsFor(path)
	l.dirs.Set(path, d)
	l.async.DirLoad(d, false)
	d.Loading = true
	d.LastLoadingAction = time.Now()
	if l.OnLoadingStarted != nil {
		l.OnLoadingStarted()
	}
	l.hooks.Run1(hooks.DirLoaded, path)
	return d
}

// PreviewFromPath returns the cached preview for path, creating and
// loading it on demand. Cached previews reload when the viewport grew,
// and get a freshness check otherwise.
func (l *Loader) PreviewFromPath(path string) *preview.Preview {
	path = pathutil.Normalize(path, "")

	if pv, ok := l.previews.Get(path); ok {
		if pv.NeedsRegrow(l.PreviewHeight, l.PreviewWidth) {
			l.async.PreviewLoad(pv, l.PreviewHeight, l.PreviewWidth, l.previewOptions())
		} else {
			l.async.PreviewCheck(pv)
		}
		return pv
	}

	pv := preview.NewLoading(path, l.PreviewHeight, l.PreviewWidth)
	l.previews.Set(path, pv)
	l.async.PreviewLoad(pv, l.PreviewHeight, l.PreviewWidth, l.previewOptions())
	return pv
}

func (l *Loader) previewOptions() preview.Options {
	return preview.Options{
		Previewer:    l.cfg.Previewer,
		ImageExts:    l.cfg.ImageExtensions,
		ImageSupport: l.ImageSupport,
	}
}
