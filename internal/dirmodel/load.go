package dirmodel

import (
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/michaelscutari/fex/internal/file"
)

// Load reads the directory at path from disk. When dircounts is set the
// entry count of each subdirectory is loaded as well. Runs on a worker;
// the returned Dir is fully owned by the caller until merged.
func Load(path string, dircounts bool) *Dir {
	d := New(path)
	d.LoadTime = time.Now()
	d.LoadIno = pathIno(path)
	d.Fileinfo = dircounts

	entries, err := os.ReadDir(path)
	if err != nil {
		d.Err = err
		d.Updates = 1
		return d
	}

	for _, entry := range entries {
		f, err := file.New(path, entry.Name())
		if err != nil {
			// deleted between readdir and lstat
			continue
		}
		if dircounts && f.IsDir() {
			f.SetDircount(file.CountEntries(f.Path()))
		}
		d.allFiles = append(d.allFiles, f)
	}

	d.finishLoad()
	return d
}

// LoadFlat reads path and its descendants up to level deep into a single
// flattened listing. Display names become subpaths relative to path, and
// entries below a hidden directory are themselves hidden.
func LoadFlat(path string, level int, dircounts bool) *Dir {
	d := New(path)
	d.LoadTime = time.Now()
	d.LoadIno = pathIno(path)
	d.FlattenLevel = level
	d.Fileinfo = dircounts

	type walkItem struct {
		path   string
		level  int
		hidden bool
	}
	queue := []walkItem{{path: path}}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(head.path)
		if err != nil {
			if head.level == 0 {
				d.Err = err
			}
			continue
		}

		for _, entry := range entries {
			f, ferr := file.New(head.path, entry.Name())
			if ferr != nil {
				continue
			}
			f.SetHidden(f.IsHidden() || head.hidden)
			if f.IsDir() {
				if dircounts {
					f.SetDircount(file.CountEntries(f.Path()))
				}
				if head.level+1 <= level {
					queue = append(queue, walkItem{
						path:   f.Path(),
						level:  head.level + 1,
						hidden: f.IsHidden(),
					})
				}
			}
			if rel, rerr := filepath.Rel(path, f.Path()); rerr == nil {
				f.SetName(rel)
			}
			d.allFiles = append(d.allFiles, f)
		}
	}

	d.finishLoad()
	return d
}

func pathIno(path string) uint64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		return sys.Ino
	}
	return 0
}

func (d *Dir) finishLoad() {
	d.sortedFiles = append(d.sortedFiles[:0], d.allFiles...)
	d.files = append(d.files[:0], d.allFiles...)
	d.Updates = 1
}
