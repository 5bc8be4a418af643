// Package app assembles the core: worker pool, result queue, loader,
// notify, filesystem manager, hooks and persisted state. It owns the
// main-loop drain that applies worker results to the model.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/michaelscutari/fex/internal/async"
	"github.com/michaelscutari/fex/internal/config"
	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/fm"
	"github.com/michaelscutari/fex/internal/history"
	"github.com/michaelscutari/fex/internal/hooks"
	"github.com/michaelscutari/fex/internal/loader"
	"github.com/michaelscutari/fex/internal/notify"
	"github.com/michaelscutari/fex/internal/preview"
	"github.com/michaelscutari/fex/internal/result"
	"github.com/michaelscutari/fex/internal/spawn"
	"github.com/michaelscutari/fex/internal/visits"
	"github.com/michaelscutari/fex/internal/worker"
)

// App is the root context passed to every subsystem.
type App struct {
	Cfg    *config.Config
	Hooks  *hooks.Registry
	Pool   *worker.Pool
	Queue  *async.Queue
	Async  *async.Async
	Loader *loader.Loader
	Notify *notify.Notify
	Fm     *fm.Fm

	History *history.History
	Visits  *visits.Store

	// OnRedraw is invoked (possibly repeatedly per drain) when the view
	// must repaint. The UI collapses repeats into one draw per tick.
	OnRedraw func()

	// ShowLoading is set once a load has been in flight longer than the
	// indicator delay.
	ShowLoading bool

	// filePreview is the preview shown for the file under the cursor.
	filePreview *preview.Preview

	previewTimer *time.Timer
	loadingTimer *time.Timer

	// Message is a user-facing status message.
	Message string
}

// New builds the core rooted at startPath. Notify or pool setup failure
// is fatal per the error policy; history and visit store failures are
// downgraded to messages.
func New(cfg *config.Config, startPath string) (*App, error) {
	app := &App{
		Cfg:   cfg,
		Hooks: hooks.NewRegistry(),
	}

	if err := os.MkdirAll(config.RuntimeDir(), 0o700); err != nil {
		return nil, fmt.Errorf("app: runtime dir: %w", err)
	}

	app.Pool = worker.NewPool(cfg.Workers)
	app.Queue = result.NewQueue[async.Result](nil)
	app.Async = async.New(app.Pool, app.Queue)

	app.Loader = loader.New(app.Async, cfg, app.Hooks)
	app.Loader.OnDirUpdated = app.dirUpdated
	app.Loader.OnPreviewUpdated = func(*preview.Preview) { app.redraw() }
	app.Loader.OnLoadingStarted = app.armLoadingTimer

	n, err := notify.New(cfg.NotifyBlacklist, app.Async.Call)
	if err != nil {
		app.Pool.Shutdown()
		return nil, fmt.Errorf("app: %w", err)
	}
	app.Notify = n
	app.Async.NotifyVersion = n.Version
	n.OnEvent = app.Loader.Reload

	app.Fm = fm.New(cfg, app.Loader, n, app.Hooks, app.Async, startPath)

	if h, err := history.Load(cfg.HistoryFile); err == nil {
		app.History = h
	} else {
		app.Message = err.Error()
		app.History = &history.History{}
	}

	if store, err := visits.Open(cfg.VisitsFile); err == nil {
		app.Visits = store
		app.Hooks.Add(hooks.ChdirPost, func(path string) {
			app.Visits.Record(path)
		})
	} else {
		app.Message = err.Error()
	}

	app.Hooks.Add(hooks.FocusGained, func(string) { app.Fm.CheckDirs() })
	app.Hooks.Run(hooks.Enter)

	return app, nil
}

// SetWake installs the queue wake-up callback delivering results to the
// main loop.
func (app *App) SetWake(wake func()) { app.Queue.SetWake(wake) }

func (app *App) redraw() {
	if app.OnRedraw != nil {
		app.OnRedraw()
	}
}

func (app *App) dirUpdated(d *dirmodel.Dir) {
	if d.Visible {
		app.Fm.UpdatePreview()
		app.redraw()
	}
	if !app.anyVisibleLoading() {
		app.ShowLoading = false
	}
}

func (app *App) anyVisibleLoading() bool {
	for _, d := range app.Fm.VisibleDirs() {
		if d != nil && d.Loading {
			return true
		}
	}
	if pd := app.Fm.PreviewDir(); pd != nil && pd.Loading {
		return true
	}
	return false
}

// Drain processes every queued result in arrival order. Main loop only.
func (app *App) Drain() {
	for _, res := range app.Queue.TakeAll() {
		app.process(res)
	}
}

func (app *App) process(res async.Result) {
	switch r := res.(type) {
	case *async.CallResult:
		r.Fn()

	case *async.ChdirResult:
		app.Fm.ProcessChdir(r)
		app.redraw()

	case *async.NotifyAddResult:
		// watcher set, cache generation and visibility must all still
		// hold before the add is applied
		if r.NotifyVersion != app.Notify.Version() ||
			r.CacheVersion != app.Loader.Dirs().Version() ||
			!app.Fm.IsVisible(r.Dir) {
			r.Destroy()
			return
		}
		if err := app.Notify.AddWatch(r.Dir); err != nil {
			app.Message = err.Error()
		}

	default:
		if !app.Loader.ProcessResult(res) {
			res.Destroy()
		}
	}
}

/* timers */

func (app *App) armLoadingTimer() {
	if app.loadingTimer != nil {
		return
	}
	app.loadingTimer = time.AfterFunc(app.Cfg.LoadingIndicatorDelay(), func() {
		app.Async.Call(func() {
			app.loadingTimer = nil
			if app.anyVisibleLoading() {
				app.ShowLoading = true
				app.redraw()
			}
		})
	})
}

// FilePreview returns the preview for the file under the cursor, or nil.
func (app *App) FilePreview() *preview.Preview { return app.filePreview }

// UpdateFilePreview debounces preview loads while the cursor is moving:
// the load fires only once the cursor has rested for the preview delay.
func (app *App) UpdateFilePreview() {
	cur := app.Fm.CurrentFile()
	if cur == nil || cur.IsDir() {
		app.filePreview = nil
		return
	}
	if app.previewTimer != nil {
		app.previewTimer.Stop()
	}
	path := cur.Path()
	app.previewTimer = time.AfterFunc(app.Cfg.PreviewDelay(), func() {
		app.Async.Call(func() { app.loadFilePreview(path) })
	})
}

func (app *App) loadFilePreview(path string) {
	cur := app.Fm.CurrentFile()
	if cur == nil || cur.Path() != path {
		// the cursor moved on
		return
	}
	app.filePreview = app.Loader.PreviewFromPath(path)
	app.redraw()
}

/* process boundary */

// Spawn starts a background program whose output and exit are delivered
// as main-loop callbacks.
func (app *App) Spawn(prog string, argv []string, opts spawn.Options) (int, error) {
	return spawn.Spawn(prog, argv, opts, func(fn func()) { app.Async.Call(fn) })
}

// Execute runs a foreground program with the inherited terminal. The UI
// pauses the event loop around it.
func (app *App) Execute(prog string, argv []string) error {
	return spawn.Execute(prog, argv)
}

/* geometry */

// Resize propagates new viewport dimensions and fires the Resized hook.
func (app *App) Resize(width, height int) {
	app.Fm.Resize(height)
	app.Loader.Height = height
	app.Loader.PreviewHeight = height
	if n := len(app.Cfg.Ratios); n > 0 && app.Cfg.Preview {
		app.Loader.PreviewWidth = width * app.Cfg.Ratios[n-1] / sum(app.Cfg.Ratios)
	} else {
		app.Loader.PreviewWidth = width
	}
	app.Hooks.Run(hooks.Resized)
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	if total == 0 {
		return 1
	}
	return total
}

// Close tears the core down: fires ExitPre, flushes history, closes the
// visit store and the watcher, and joins the pool.
func (app *App) Close() {
	app.Hooks.Run(hooks.ExitPre)
	if app.History != nil {
		app.History.Write()
	}
	if app.Visits != nil {
		app.Visits.Close()
	}
	app.Notify.Close()
	app.Pool.Shutdown()
}
