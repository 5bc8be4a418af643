package dirmodel

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/michaelscutari/fex/internal/filter"
)

func mkfiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func names(d *Dir) []string {
	out := make([]string, 0, d.Length())
	for _, f := range d.Files() {
		out = append(out, f.Name())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestColdLoadHiddenToggle(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a", "b", "c", ".h")

	d := Load(root, false)
	d.Sort()

	if got := len(d.AllFiles()); got != 4 {
		t.Fatalf("allFiles = %d, want 4", got)
	}
	if !equal(names(d), []string{"a", "b", "c"}) {
		t.Fatalf("visible = %v", names(d))
	}
	if d.Ind != 0 {
		t.Fatalf("cursor = %d, want 0", d.Ind)
	}

	d.Settings.Hidden = true
	d.Sort()
	if !equal(names(d), []string{".h", "a", "b", "c"}) {
		t.Fatalf("visible with hidden = %v", names(d))
	}
}

func TestLengthInvariant(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "alpha", "beta", "gamma", ".hid")

	d := Load(root, false)
	d.Sort()
	d.SetFilter(filter.NewSubstring("a"))

	if len(d.files) > len(d.sortedFiles) {
		t.Fatal("files longer than sortedFiles")
	}
	if len(d.sortedFiles) > len(d.allFiles) {
		t.Fatal("sortedFiles longer than allFiles")
	}
}

func TestCursorClamping(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a", "b", "c")

	d := Load(root, false)
	d.Sort()

	d.CursorMoveBy(100, 10, 2)
	if d.Ind != 2 {
		t.Fatalf("cursor = %d, want 2", d.Ind)
	}
	d.CursorMoveBy(-100, 10, 2)
	if d.Ind != 0 {
		t.Fatalf("cursor = %d, want 0", d.Ind)
	}
}

func TestEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	d := Load(root, false)
	d.Sort()

	if d.Length() != 0 || d.Ind != 0 {
		t.Fatalf("length=%d ind=%d", d.Length(), d.Ind)
	}
	if d.CurrentFile() != nil {
		t.Fatal("CurrentFile should be nil")
	}
	d.CursorMoveBy(5, 10, 2)
	if d.Ind != 0 {
		t.Fatalf("cursor moved in empty dir: %d", d.Ind)
	}
}

func TestLoadError(t *testing.T) {
	root := t.TempDir()
	d := Load(filepath.Join(root, "missing"), false)
	if d.Err == nil {
		t.Fatal("expected load error")
	}
	if d.IsLoading() {
		t.Fatal("failed load should still count as an update")
	}
}

func TestSortIdempotent(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "x10", "x2", "x1", "b", "A")

	for _, st := range []SortType{SortNatural, SortName, SortSize, SortMtime} {
		d := Load(root, false)
		d.SetSortType(st)
		d.Sort()
		first := names(d)
		d.Sort()
		if !equal(first, names(d)) {
			t.Fatalf("sort %v not idempotent: %v vs %v", st, first, names(d))
		}
	}
}

func TestRandomSortIsPermutation(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a", "b", "c", "d", "e")

	d := Load(root, false)
	d.SetSortType(SortRandom)
	d.Settings.DirFirst = false
	d.Sort()

	got := names(d)
	sort.Strings(got)
	if !equal(got, []string{"a", "b", "c", "d", "e"}) {
		t.Fatalf("random sort lost entries: %v", got)
	}
}

func TestFilterIdempotent(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "main.go", "main_test.go", "README")

	d := Load(root, false)
	d.Sort()
	d.SetFilter(filter.NewSubstring("go !test"))
	first := names(d)
	d.SetFilter(filter.NewSubstring("go !test"))
	if !equal(first, names(d)) {
		t.Fatalf("filter not idempotent: %v vs %v", first, names(d))
	}
	if !equal(first, []string{"main.go"}) {
		t.Fatalf("filtered = %v", first)
	}
}

func TestFilterOrderPreserving(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "ab", "cab", "xx", "ba")

	d := Load(root, false)
	d.Settings.DirFirst = false
	d.Sort()
	d.SetFilter(filter.NewSubstring("a"))

	sortedNames := []string{}
	for _, f := range d.sortedFiles {
		if d.filter.Match(f.Name()) {
			sortedNames = append(sortedNames, f.Name())
		}
	}
	if !equal(names(d), sortedNames) {
		t.Fatalf("filter reordered: %v vs %v", names(d), sortedNames)
	}
}

func TestReverseSegments(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "f1", "f2")
	if err := os.MkdirAll(filepath.Join(root, "d1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "d2"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	d := Load(root, false)
	d.Settings.Reverse = true
	d.Sort()

	if !equal(names(d), []string{"d2", "d1", "f2", "f1"}) {
		t.Fatalf("reverse with dirfirst = %v", names(d))
	}
}

func TestUpdateWithPreservesCursorByName(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a", "b", "c")

	d := Load(root, false)
	d.Sort()
	d.CursorMoveTo("b", 10, 0)
	if d.CurrentFile().Name() != "b" {
		t.Fatalf("cursor on %q", d.CurrentFile().Name())
	}

	mkfiles(t, root, "aa") // sorts before b
	update := Load(root, false)
	d.UpdateWith(update, 10, 0)

	if got := d.CurrentFile().Name(); got != "b" {
		t.Fatalf("cursor after merge on %q, want b", got)
	}
	if d.Updates != 2 {
		t.Fatalf("updates = %d, want 2", d.Updates)
	}
}

func TestUpdateWithRemovedCurrent(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a", "b", "c")

	d := Load(root, false)
	d.Sort()
	d.CursorMoveTo("c", 10, 0)

	if err := os.Remove(filepath.Join(root, "c")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	d.UpdateWith(Load(root, false), 10, 0)

	if d.Ind >= d.Length() {
		t.Fatalf("cursor %d out of range %d", d.Ind, d.Length())
	}
}

func TestSelAppliedAfterFirstLoad(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a", "b", "c")

	d := New(root)
	d.CursorMoveTo("b", 10, 0) // not loaded yet, remembered
	d.UpdateWith(Load(root, false), 10, 0)

	if got := d.CurrentFile().Name(); got != "b" {
		t.Fatalf("cursor on %q, want b", got)
	}
}

func TestFlattenLevelTwo(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a/x", "a/b/y")

	d := LoadFlat(root, 2, false)
	d.Sort()

	if !equal(names(d), []string{"a", "a/b", "a/b/y", "a/x"}) {
		t.Fatalf("flattened = %v", names(d))
	}
	if d.FlattenLevel != 2 {
		t.Fatalf("level = %d", d.FlattenLevel)
	}
}

func TestFlattenInheritsHidden(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, ".hid/inner", "plain")

	d := LoadFlat(root, 1, false)
	d.Sort()

	for _, f := range d.Files() {
		if f.Name() == ".hid/inner" {
			t.Fatal("entry inside hidden dir should be hidden")
		}
	}

	d.Settings.Hidden = true
	d.Sort()
	found := false
	for _, f := range d.Files() {
		if f.Name() == ".hid/inner" {
			found = true
		}
	}
	if !found {
		t.Fatal("hidden entry missing when hidden files are shown")
	}
}

func TestFuzzyFilterRanks(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "abc", "a_b_c_long", "zzz")

	d := Load(root, false)
	d.Settings.DirFirst = false
	d.Sort()
	d.SetFilter(filter.NewFuzzy("abc"))

	got := names(d)
	if len(got) != 2 || got[0] != "abc" {
		t.Fatalf("fuzzy ranked = %v", got)
	}
}
