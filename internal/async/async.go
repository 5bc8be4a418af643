// Package async is the job façade: typed submissions that run filesystem
// work on the pool and post results back to the main loop. Results carry
// the version values captured at submission time; the main loop discards
// results whose versions no longer match.
package async

import (
	"os"
	"syscall"
	"time"

	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/file"
	"github.com/michaelscutari/fex/internal/preview"
	"github.com/michaelscutari/fex/internal/result"
	"github.com/michaelscutari/fex/internal/worker"
)

func statIno(st os.FileInfo) uint64 {
	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		return sys.Ino
	}
	return 0
}

// Result is the closed variant posted to the main loop. Process logic
// lives with the consumer (a type switch in the app); Destroy releases
// resources when a result is dropped unprocessed.
type Result interface {
	Destroy()
}

// Queue is the typed result queue drained by the main loop.
type Queue = result.Queue[Result]

// Async submits jobs. All submission methods are main-thread-only; the
// closures they enqueue touch nothing but their copied payloads.
type Async struct {
	pool  *worker.Pool
	queue *Queue

	// Version sources, read at submission time.
	DirVersion     func() uint64
	PreviewVersion func() uint64
	NotifyVersion  func() uint64
}

// New creates an Async over a pool and queue. The version sources default
// to zero until set.
func New(pool *worker.Pool, queue *Queue) *Async {
	zero := func() uint64 { return 0 }
	return &Async{
		pool:           pool,
		queue:          queue,
		DirVersion:     zero,
		PreviewVersion: zero,
		NotifyVersion:  zero,
	}
}

// Pool returns the underlying worker pool.
func (a *Async) Pool() *worker.Pool { return a.pool }

// Queue returns the result queue.
func (a *Async) Queue() *Queue { return a.queue }

func (a *Async) submit(job func()) {
	// a failed submit means shutdown; dropping the job is fine
	_ = a.pool.Submit(job)
}

// Call posts fn for execution on the main loop without worker
// involvement. Timers and spawn callbacks use this to marshal onto the
// main thread.
func (a *Async) Call(fn func()) {
	a.queue.Put(&CallResult{Fn: fn})
}

// Do runs work on a worker; the closure it returns (if any) is posted for
// execution on the main loop.
func (a *Async) Do(work func() func()) {
	a.submit(func() {
		if fn := work(); fn != nil {
			a.queue.Put(&CallResult{Fn: fn})
		}
	})
}

// CallResult runs an arbitrary closure on the main loop.
type CallResult struct {
	Fn func()
}

func (r *CallResult) Destroy() {}

/* dir check */

// DirCheckResult reports whether a loaded directory changed on disk.
type DirCheckResult struct {
	Dir     *dirmodel.Dir
	Changed bool
}

func (r *DirCheckResult) Destroy() {}

// DirCheck stats the directory on a worker and compares inode and mtime
// against the values recorded at load time.
func (a *Async) DirCheck(d *dirmodel.Dir) {
	path := d.Path
	loadTime := d.LoadTime
	ino := d.LoadIno
	dir := d
	a.submit(func() {
		st, err := os.Stat(path)
		if err != nil {
			return
		}
		changed := st.ModTime().After(loadTime)
		if sys := statIno(st); sys != 0 && ino != 0 && sys != ino {
			changed = true
		}
		a.queue.Put(&DirCheckResult{Dir: dir, Changed: changed})
	})
}

/* dir load */

// DirUpdateResult carries a freshly loaded replacement directory.
type DirUpdateResult struct {
	Dir     *dirmodel.Dir
	Update  *dirmodel.Dir
	Version uint64
}

func (r *DirUpdateResult) Destroy() {}

// Dircount pairs a file with its loaded child count.
type Dircount struct {
	File  *file.File
	Count int
}

// DirFileinfoResult is a batch of directory child counts produced by the
// follow-up pass after a load without file info.
type DirFileinfoResult struct {
	Dir     *dirmodel.Dir
	Counts  []Dircount
	Last    bool
	Version uint64
	Level   int
}

func (r *DirFileinfoResult) Destroy() {}

// fileinfoBatchWindow is how long counts accumulate before a batch is
// posted.
const fileinfoBatchWindow = 200 * time.Millisecond

// DirLoad reads the directory on a worker and posts a replacement. When
// fileinfo is false a follow-up pass loads subdirectory counts in
// batches.
func (a *Async) DirLoad(d *dirmodel.Dir, fileinfo bool) {
	path := d.Path
	level := d.FlattenLevel
	version := a.DirVersion()
	dir := d
	a.submit(func() {
		var update *dirmodel.Dir
		if level > 0 {
			update = dirmodel.LoadFlat(path, level, fileinfo)
		} else {
			update = dirmodel.Load(path, fileinfo)
		}

		type filePath struct {
			f    *file.File
			path string
		}
		var pending []filePath
		if !fileinfo {
			for _, f := range update.AllFiles() {
				if f.IsDir() {
					pending = append(pending, filePath{f: f, path: f.Path()})
				}
			}
		}

		a.queue.Put(&DirUpdateResult{Dir: dir, Update: update, Version: version})

		if len(pending) == 0 {
			if !fileinfo {
				a.queue.Put(&DirFileinfoResult{Dir: dir, Last: true, Version: version, Level: level})
			}
			return
		}

		var counts []Dircount
		latest := time.Now()
		for _, fp := range pending {
			counts = append(counts, Dircount{File: fp.f, Count: file.CountEntries(fp.path)})
			if time.Since(latest) > fileinfoBatchWindow {
				a.queue.Put(&DirFileinfoResult{Dir: dir, Counts: counts, Version: version, Level: level})
				counts = nil
				latest = time.Now()
			}
		}
		a.queue.Put(&DirFileinfoResult{Dir: dir, Counts: counts, Last: true, Version: version, Level: level})
	})
}

/* preview */

// PreviewUpdateResult carries a freshly loaded replacement preview.
type PreviewUpdateResult struct {
	Preview *preview.Preview
	Update  *preview.Preview
	Version uint64
}

func (r *PreviewUpdateResult) Destroy() {}

// PreviewCheckResult asks the main loop to reload the preview at Path.
type PreviewCheckResult struct {
	Path string
}

func (r *PreviewCheckResult) Destroy() {}

// PreviewLoad builds the preview on a worker and posts a replacement.
func (a *Async) PreviewLoad(pv *preview.Preview, height, width int, opts preview.Options) {
	path := pv.Path
	version := a.PreviewVersion()
	target := pv
	a.submit(func() {
		update := preview.Load(path, height, width, opts)
		a.queue.Put(&PreviewUpdateResult{Preview: target, Update: update, Version: version})
	})
}

// PreviewCheck stats the file on a worker; if it is newer than the cached
// preview a check result asking for a reload is posted.
func (a *Async) PreviewCheck(pv *preview.Preview) {
	path := pv.Path
	mtime := pv.Mtime
	loadTime := pv.LoadTime
	a.submit(func() {
		st, err := os.Stat(path)
		if err != nil {
			return
		}
		m := st.ModTime().Unix()
		if m <= mtime.Unix() && m <= loadTime.Unix()-1 {
			return
		}
		a.queue.Put(&PreviewCheckResult{Path: path})
	})
}

/* notify add */

// NotifyAddResult asks the main loop to register an inotify watch for
// Dir. Posted only after the worker validated the path.
type NotifyAddResult struct {
	Dir           *dirmodel.Dir
	NotifyVersion uint64
	CacheVersion  uint64
}

func (r *NotifyAddResult) Destroy() {}

// NotifyAdd validates the directory on a worker (stat plus open) so a
// slow mount cannot stall the main loop, then posts the add request.
func (a *Async) NotifyAdd(d *dirmodel.Dir) {
	path := d.Path
	nver := a.NotifyVersion()
	cver := a.DirVersion()
	dir := d
	a.submit(func() {
		st, err := os.Stat(path)
		if err != nil || !st.IsDir() {
			return
		}
		f, err := os.Open(path)
		if err != nil {
			return
		}
		f.Close()
		a.queue.Put(&NotifyAddResult{Dir: dir, NotifyVersion: nver, CacheVersion: cver})
	})
}

/* chdir */

// ChdirResult reports an asynchronous directory change. Err is set when
// the target could not be stat'ed or is not a directory.
type ChdirResult struct {
	Path   string
	Origin string
	Save   bool
	Hook   bool
	Err    error
}

func (r *ChdirResult) Destroy() {}

// Chdir stats the target on a worker and posts the outcome.
func (a *Async) Chdir(path, origin string, save, hook bool) {
	a.submit(func() {
		st, err := os.Stat(path)
		res := &ChdirResult{Path: path, Origin: origin, Save: save, Hook: hook}
		if err != nil {
			res.Err = err
		} else if !st.IsDir() {
			res.Err = &os.PathError{Op: "chdir", Path: path, Err: syscall.ENOTDIR}
		}
		a.queue.Put(res)
	})
}
