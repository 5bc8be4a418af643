package notify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/michaelscutari/fex/internal/dirmodel"
)

type poster struct {
	mu  sync.Mutex
	fns []func()
}

func (p *poster) post(fn func()) {
	p.mu.Lock()
	p.fns = append(p.fns, fn)
	p.mu.Unlock()
}

func (p *poster) drain() {
	p.mu.Lock()
	fns := p.fns
	p.fns = nil
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func waitFor(t *testing.T, p *poster, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		p.drain()
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	p.drain()
	return cond()
}

func TestEventTriggersReloadRequest(t *testing.T) {
	root := t.TempDir()
	p := &poster{}

	n, err := New(nil, p.post)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer n.Close()

	d := dirmodel.New(root)
	var fired []*dirmodel.Dir
	n.OnEvent = func(dir *dirmodel.Dir) { fired = append(fired, dir) }

	if err := n.AddWatch(d); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "new"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !waitFor(t, p, 2*time.Second, func() bool { return len(fired) > 0 }) {
		t.Fatal("event never fired")
	}
	if fired[0] != d {
		t.Fatal("event mapped to wrong dir")
	}
}

func TestAddWatchIdempotent(t *testing.T) {
	root := t.TempDir()
	p := &poster{}
	n, err := New(nil, p.post)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer n.Close()

	d := dirmodel.New(root)
	if err := n.AddWatch(d); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := n.AddWatch(d); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if !n.Watched(d) {
		t.Fatal("dir not watched")
	}

	n.RemoveWatch(d)
	n.RemoveWatch(d) // idempotent
	if n.Watched(d) {
		t.Fatal("dir still watched")
	}
}

func TestSetWatchersBumpsVersion(t *testing.T) {
	p := &poster{}
	n, err := New(nil, p.post)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer n.Close()

	v0 := n.Version()
	n.SetWatchers([]*dirmodel.Dir{dirmodel.New(t.TempDir()), nil})
	if n.Version() != v0+1 {
		t.Fatalf("version = %d, want %d", n.Version(), v0+1)
	}

	n.RemoveAll()
	if n.Version() != v0+2 {
		t.Fatalf("version = %d after RemoveAll", n.Version())
	}
}

func TestBlacklistSuppressesWatcher(t *testing.T) {
	root := t.TempDir()
	p := &poster{}
	n, err := New([]string{root}, p.post)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer n.Close()

	d := dirmodel.New(filepath.Join(root, "sub"))
	if err := n.AddWatch(d); err != nil {
		t.Fatalf("add: %v", err)
	}
	if n.Watched(d) {
		t.Fatal("blacklisted path got a watcher")
	}
}

func TestBlacklistGlob(t *testing.T) {
	p := &poster{}
	n, err := New([]string{"/mnt/*"}, p.post)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer n.Close()

	if !n.Blacklisted("/mnt/nfs") {
		t.Fatal("glob entry should match")
	}
	if n.Blacklisted("/home/user") {
		t.Fatal("unrelated path matched")
	}
}
