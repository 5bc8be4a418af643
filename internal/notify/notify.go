// Package notify maps filesystem change events onto per-directory reload
// requests. It owns the watcher set; the throttling itself lives in the
// loader.
package notify

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/michaelscutari/fex/internal/dirmodel"
)

// AddWatchError wraps a failure to register a watch.
type AddWatchError struct {
	Path string
	Err  error
}

func (e *AddWatchError) Error() string {
	return fmt.Sprintf("notify: watch %s: %v", e.Path, e.Err)
}

func (e *AddWatchError) Unwrap() error { return e.Err }

type blacklistEntry struct {
	prefix string
	g      glob.Glob
}

// Notify owns the fsnotify watcher and the path → Dir mapping. All
// methods are main-thread-only; the event reader goroutine marshals each
// event back through post.
type Notify struct {
	watcher *fsnotify.Watcher
	dirs    map[string]*dirmodel.Dir
	version uint64

	blacklist []blacklistEntry

	fifoPath string
	onFifo   func()

	// OnEvent is called on the main loop for each event that maps to a
	// watched directory.
	OnEvent func(d *dirmodel.Dir)

	post func(fn func())
}

// New creates the notify subsystem. Blacklist entries are glob patterns
// or plain path prefixes; matching paths never get watchers. post must
// marshal closures onto the main loop.
func New(blacklist []string, post func(fn func())) (*Notify, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	n := &Notify{
		watcher: watcher,
		dirs:    make(map[string]*dirmodel.Dir),
		post:    post,
	}
	for _, entry := range blacklist {
		e := blacklistEntry{prefix: entry}
		if g, err := glob.Compile(entry); err == nil {
			e.g = g
		}
		n.blacklist = append(n.blacklist, e)
	}

	go n.readEvents()
	return n, nil
}

func (n *Notify) readEvents() {
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if event.Name == "" {
				continue
			}
			name := event.Name
			n.post(func() { n.dispatch(name) })
		case _, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// dispatch runs on the main loop and routes one event.
func (n *Notify) dispatch(name string) {
	if n.fifoPath != "" && name == n.fifoPath {
		if n.onFifo != nil {
			n.onFifo()
		}
		return
	}
	if d, ok := n.dirs[filepath.Dir(name)]; ok {
		n.fire(d)
		return
	}
	// the watched directory itself changed (moved, removed, chmod)
	if d, ok := n.dirs[name]; ok {
		n.fire(d)
	}
}

func (n *Notify) fire(d *dirmodel.Dir) {
	if n.OnEvent != nil {
		n.OnEvent(d)
	}
}

// Blacklisted reports whether path never gets a watcher.
func (n *Notify) Blacklisted(path string) bool {
	for _, e := range n.blacklist {
		if strings.HasPrefix(path, e.prefix) {
			return true
		}
		if e.g != nil && e.g.Match(path) {
			return true
		}
	}
	return false
}

// AddWatch registers a watch for d. Idempotent; blacklisted paths are
// silently skipped.
func (n *Notify) AddWatch(d *dirmodel.Dir) error {
	if n.Blacklisted(d.Path) {
		return nil
	}
	if _, ok := n.dirs[d.Path]; ok {
		return nil
	}
	if err := n.watcher.Add(d.Path); err != nil {
		return &AddWatchError{Path: d.Path, Err: err}
	}
	n.dirs[d.Path] = d
	return nil
}

// RemoveWatch deregisters the watch for d. Idempotent.
func (n *Notify) RemoveWatch(d *dirmodel.Dir) {
	if _, ok := n.dirs[d.Path]; !ok {
		return
	}
	n.watcher.Remove(d.Path)
	delete(n.dirs, d.Path)
}

// RemoveAll drops every watch and bumps the version so in-flight add
// results are discarded.
func (n *Notify) RemoveAll() {
	n.version++
	for path := range n.dirs {
		n.watcher.Remove(path)
		delete(n.dirs, path)
	}
}

// SetWatchers replaces the watcher set with the given dirs. Nil entries
// are skipped.
func (n *Notify) SetWatchers(dirs []*dirmodel.Dir) {
	n.RemoveAll()
	for _, d := range dirs {
		if d != nil {
			n.AddWatch(d)
		}
	}
}

// Watched reports whether d currently has a watch.
func (n *Notify) Watched(d *dirmodel.Dir) bool {
	_, ok := n.dirs[d.Path]
	return ok
}

// Version returns the watcher-set generation counter.
func (n *Notify) Version() uint64 { return n.version }

// SetFifo watches the command FIFO at path and dispatches its events to
// fn instead of the reload path.
func (n *Notify) SetFifo(path string, fn func()) error {
	n.fifoPath = path
	n.onFifo = fn
	if err := n.watcher.Add(filepath.Dir(path)); err != nil {
		return &AddWatchError{Path: path, Err: err}
	}
	return nil
}

// Close deregisters everything and shuts the watcher down.
func (n *Notify) Close() {
	n.RemoveAll()
	n.watcher.Close()
}
