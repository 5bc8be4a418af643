package loader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/fex/internal/async"
	"github.com/michaelscutari/fex/internal/config"
	"github.com/michaelscutari/fex/internal/hooks"
	"github.com/michaelscutari/fex/internal/loader"
	"github.com/michaelscutari/fex/internal/result"
	"github.com/michaelscutari/fex/internal/worker"
)

// harness stands in for the main loop: it owns the queue and drains
// results on the test goroutine.
type harness struct {
	t      *testing.T
	pool   *worker.Pool
	queue  *async.Queue
	loader *loader.Loader
	cfg    *config.Config
	reg    *hooks.Registry

	dirUpdated int
	dirLoaded  int
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{t: t, cfg: cfg}
	h.pool = worker.NewPool(2)
	t.Cleanup(h.pool.Shutdown)
	h.queue = result.NewQueue[async.Result](nil)
	a := async.New(h.pool, h.queue)
	h.reg = hooks.NewRegistry()
	h.reg.Add(hooks.DirUpdated, func(string) { h.dirUpdated++ })
	h.reg.Add(hooks.DirLoaded, func(string) { h.dirLoaded++ })
	h.loader = loader.New(a, cfg, h.reg)
	return h
}

func (h *harness) drainOnce() {
	for _, res := range h.queue.TakeAll() {
		if call, ok := res.(*async.CallResult); ok {
			call.Fn()
			continue
		}
		h.loader.ProcessResult(res)
	}
}

// drainUntil drains the queue until cond holds or the deadline expires.
func (h *harness) drainUntil(d time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		h.drainOnce()
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	h.drainOnce()
	return cond()
}

func throttleConfig() *config.Config {
	cfg := config.Default()
	cfg.InotifyTimeoutMs = 200
	cfg.InotifyDelayMs = 20
	return cfg
}

func TestDirFromPathLoadsOnDemand(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b"} {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	h := newHarness(t, throttleConfig())
	d := h.loader.DirFromPath(root)

	if !d.IsLoading() {
		t.Fatal("fresh dir should be loading")
	}
	if h.dirLoaded != 1 {
		t.Fatalf("DirLoaded fired %d times", h.dirLoaded)
	}

	if !h.drainUntil(2*time.Second, func() bool { return !d.IsLoading() }) {
		t.Fatal("load never arrived")
	}
	if d.Length() != 2 {
		t.Fatalf("length = %d", d.Length())
	}
	if h.dirUpdated != 1 {
		t.Fatalf("DirUpdated fired %d times", h.dirUpdated)
	}

	// second lookup returns the same Dir
	if again := h.loader.DirFromPath(root); again != d {
		t.Fatal("cache miss on second lookup")
	}
}

func TestReloadCoalescesBursts(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t, throttleConfig())

	d := h.loader.DirFromPath(root)
	if !h.drainUntil(2*time.Second, func() bool { return !d.IsLoading() }) {
		t.Fatal("initial load missing")
	}
	updatesAfterLoad := d.Updates

	// burst of change notifications
	h.loader.Reload(d)
	h.loader.Reload(d)
	h.loader.Reload(d)

	if !h.drainUntil(2*time.Second, func() bool { return d.Updates == updatesAfterLoad+1 }) {
		t.Fatal("reload never applied")
	}

	// no second reload sneaks in before the timeout window has passed
	h.drainUntil(50*time.Millisecond, func() bool { return false })
	if d.Updates != updatesAfterLoad+1 {
		t.Fatalf("burst caused %d reloads", d.Updates-updatesAfterLoad)
	}
}

func TestReloadGapRespectsTimeout(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t, throttleConfig())

	d := h.loader.DirFromPath(root)
	if !h.drainUntil(2*time.Second, func() bool { return !d.IsLoading() }) {
		t.Fatal("initial load missing")
	}
	base := d.Updates

	h.loader.Reload(d)
	if !h.drainUntil(2*time.Second, func() bool { return d.Updates == base+1 }) {
		t.Fatal("first reload missing")
	}
	first := time.Now()

	h.loader.Reload(d)
	if !h.drainUntil(2*time.Second, func() bool { return d.Updates == base+2 }) {
		t.Fatal("second reload missing")
	}
	gap := time.Since(first)

	timeout := h.cfg.InotifyTimeout()
	// generous tolerance: the second reload must not fire well inside
	// the throttle window
	if gap < timeout/2 {
		t.Fatalf("reload gap %v shorter than throttle window %v", gap, timeout)
	}
}

func TestRequestDuringInflightLoad(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t, throttleConfig())

	d := h.loader.DirFromPath(root)
	// the initial load is still in flight: a reload request must be
	// remembered, not scheduled
	h.loader.Reload(d)
	if d.Scheduled {
		t.Fatal("reload scheduled while load in flight")
	}
	if d.NextRequestedLoad.IsZero() {
		t.Fatal("requested load not remembered")
	}

	if !h.drainUntil(2*time.Second, func() bool { return d.Updates >= 2 }) {
		t.Fatal("requested reload never fired")
	}
}

func TestDropDirCacheDiscardsInflightResult(t *testing.T) {
	root := t.TempDir()
	h := newHarness(t, throttleConfig())

	d := h.loader.DirFromPath(root)
	h.loader.DropDirCache()

	// let the load result arrive and be drained
	h.pool.Wait()
	h.drainOnce()

	if d.Updates != 0 {
		t.Fatal("stale result was applied after cache drop")
	}
	if h.dirUpdated != 0 {
		t.Fatal("DirUpdated fired for a dropped cache generation")
	}
}

func TestPreviewFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h := newHarness(t, throttleConfig())
	pv := h.loader.PreviewFromPath(path)
	if !pv.Loading {
		t.Fatal("fresh preview should be loading")
	}

	if !h.drainUntil(2*time.Second, func() bool { return !pv.Loading }) {
		t.Fatal("preview load missing")
	}
	if len(pv.Lines) != 2 || pv.Lines[0] != "one" {
		t.Fatalf("lines = %v", pv.Lines)
	}

	if again := h.loader.PreviewFromPath(path); again != pv {
		t.Fatal("preview cache miss")
	}
}

func TestDropPreviewCacheDiscardsInflightResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h := newHarness(t, throttleConfig())
	pv := h.loader.PreviewFromPath(path)
	h.loader.DropPreviewCache()

	h.pool.Wait()
	h.drainOnce()

	if !pv.Loading {
		t.Fatal("stale preview result applied after cache drop")
	}
}

func TestDirSettingsApplied(t *testing.T) {
	root := t.TempDir()
	cfg := throttleConfig()
	hidden := true
	cfg.DirSettings = map[string]config.DirSetting{
		root: {Sort: "size", Hidden: &hidden},
	}

	h := newHarness(t, cfg)
	d := h.loader.DirFromPath(root)
	if d.Settings.Sort.String() != "size" || !d.Settings.Hidden {
		t.Fatalf("settings = %+v", d.Settings)
	}
}
