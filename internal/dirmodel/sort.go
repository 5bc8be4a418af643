package dirmodel

import (
	"math/rand/v2"
	"sort"

	"github.com/michaelscutari/fex/internal/file"
	"github.com/michaelscutari/fex/internal/filter"
	"github.com/michaelscutari/fex/internal/natsort"
)

// SortType selects the comparator applied to a directory.
type SortType uint8

const (
	SortNatural SortType = iota
	SortName
	SortSize
	SortCtime
	SortAtime
	SortMtime
	SortRandom
)

var sortTypeNames = [...]string{
	"natural", "name", "size", "ctime", "atime", "mtime", "random",
}

func (t SortType) String() string {
	if int(t) < len(sortTypeNames) {
		return sortTypeNames[t]
	}
	return "natural"
}

// ParseSortType maps a name to a SortType; unknown names yield natural.
func ParseSortType(s string) SortType {
	for i, name := range sortTypeNames {
		if s == name {
			return SortType(i)
		}
	}
	return SortNatural
}

func lessFor(t SortType) func(a, b *file.File) bool {
	switch t {
	case SortName:
		return func(a, b *file.File) bool {
			return caseInsensitiveLess(a.Name(), b.Name())
		}
	case SortSize:
		return func(a, b *file.File) bool { return a.Size() < b.Size() }
	case SortCtime:
		return func(a, b *file.File) bool { return a.Ctime().After(b.Ctime()) }
	case SortAtime:
		return func(a, b *file.File) bool { return a.Atime().After(b.Atime()) }
	case SortMtime:
		return func(a, b *file.File) bool { return a.ModTime().After(b.ModTime()) }
	default:
		return func(a, b *file.File) bool { return natsort.Less(a.Name(), b.Name()) }
	}
}

func caseInsensitiveLess(a, b string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := lowerByte(a[i]), lowerByte(b[i])
		if ca != cb {
			return ca < cb
		}
	}
	return len(a) < len(b)
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Sort orders allFiles by the current sort type (once per invalidation),
// rebuilds the sorted view honoring dirfirst/reverse/hidden, and reapplies
// the filter.
func (d *Dir) Sort() {
	if !d.sorted {
		if d.Settings.Sort == SortRandom {
			rand.Shuffle(len(d.allFiles), func(i, j int) {
				d.allFiles[i], d.allFiles[j] = d.allFiles[j], d.allFiles[i]
			})
		} else {
			less := lessFor(d.Settings.Sort)
			sort.SliceStable(d.allFiles, func(i, j int) bool {
				return less(d.allFiles[i], d.allFiles[j])
			})
		}
		d.sorted = true
	}

	d.sortedFiles = d.sortedFiles[:0]
	ndirs := 0
	if d.Settings.DirFirst {
		for _, f := range d.allFiles {
			if d.skipHidden(f) {
				continue
			}
			if f.IsDir() {
				d.sortedFiles = append(d.sortedFiles, f)
			}
		}
		ndirs = len(d.sortedFiles)
		for _, f := range d.allFiles {
			if d.skipHidden(f) {
				continue
			}
			if !f.IsDir() {
				d.sortedFiles = append(d.sortedFiles, f)
			}
		}
	} else {
		for _, f := range d.allFiles {
			if !d.skipHidden(f) {
				d.sortedFiles = append(d.sortedFiles, f)
			}
		}
	}

	if d.Settings.Reverse {
		reverseRange(d.sortedFiles, 0, ndirs)
		reverseRange(d.sortedFiles, ndirs, len(d.sortedFiles))
	}

	d.applyFilter()
}

func (d *Dir) skipHidden(f *file.File) bool {
	return !d.Settings.Hidden && f.IsHidden()
}

func reverseRange(files []*file.File, lo, hi int) {
	for i, j := lo, hi-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}
}

// applyFilter rebuilds the visible view as the order-preserving
// subsequence of sortedFiles matching the filter. Scoring filters rank
// their matches best-first.
func (d *Dir) applyFilter() {
	if d.filter == nil {
		d.files = append(d.files[:0], d.sortedFiles...)
	} else {
		d.files = d.files[:0]
		for _, f := range d.sortedFiles {
			if d.filter.Match(f.Name()) {
				d.files = append(d.files, f)
			}
		}
		if scorer, ok := d.filter.(filter.Scorer); ok {
			sort.SliceStable(d.files, func(i, j int) bool {
				return scorer.Score(d.files[i].Name()) > scorer.Score(d.files[j].Name())
			})
		}
	}
	d.Ind = clamp(d.Ind, 0, max(len(d.files)-1, 0))
}
