// Package preview implements per-file previews: text lines produced by an
// external previewer (or a raw read), or a decoded image handle for
// extensions the renderer can draw.
package preview

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/michaelscutari/fex/internal/spawn"
)

// Kind discriminates the closed set of preview variants.
type Kind uint8

const (
	KindText Kind = iota
	KindImage
)

// Image is a decoded image handle: raw bytes plus dimensions. Drawing is
// chosen at the render boundary.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// SpawnError wraps a previewer invocation failure.
type SpawnError struct {
	Prog string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("previewer %s: %v", e.Prog, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Preview is one file's preview. Created on demand in the loading state
// and filled in by a worker-produced replacement.
type Preview struct {
	Path string
	Kind Kind

	Lines []string
	Image *Image

	// Viewport dimensions the preview was loaded for; growing past them
	// forces a reload.
	ReloadWidth  int
	ReloadHeight int

	LoadTime time.Time
	Mtime    time.Time
	Loading  bool

	// Next is the reload scheduler bookkeeping, owned by the loader.
	Next time.Time

	Err error
}

// NewLoading creates an empty preview in the loading state.
func NewLoading(path string, height, width int) *Preview {
	return &Preview{
		Path:         path,
		ReloadHeight: height,
		ReloadWidth:  width,
		Loading:      true,
	}
}

// Options configures how previews are produced.
type Options struct {
	// Previewer is the external program run as `previewer <path>`; empty
	// means read the file directly.
	Previewer string

	// ImageExts lists extensions decoded as images (ignored when
	// ImageSupport is false).
	ImageExts    []string
	ImageSupport bool
}

func (o Options) isImage(path string) bool {
	if !o.ImageSupport {
		return false
	}
	lower := strings.ToLower(path)
	for _, ext := range o.ImageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Load builds a preview of the file at path for a height×width viewport.
// Runs on a worker; the result is merged on the main loop.
func Load(path string, height, width int, opts Options) *Preview {
	pv := &Preview{
		Path:         path,
		ReloadHeight: height,
		ReloadWidth:  width,
		LoadTime:     time.Now(),
	}

	if st, err := os.Stat(path); err == nil {
		pv.Mtime = st.ModTime()
	}

	if opts.isImage(path) {
		pv.Kind = KindImage
		img, err := decodeImage(path)
		if err != nil {
			pv.Kind = KindText
			pv.Lines = []string{fmt.Sprintf("image: %v", err)}
			pv.Err = err
			return pv
		}
		pv.Image = img
		return pv
	}

	if opts.Previewer != "" {
		lines, err := spawn.ReadLines(opts.Previewer, []string{path}, height)
		if err != nil {
			pv.Err = &SpawnError{Prog: opts.Previewer, Err: err}
			return pv
		}
		pv.Lines = lines
		return pv
	}

	lines, err := readFileLines(path, height)
	if err != nil {
		pv.Err = err
		return pv
	}
	pv.Lines = lines
	return pv
}

func readFileLines(path string, maxLines int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for len(lines) < maxLines && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, nil
}

func decodeImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// UpdateWith replaces pv's contents with those of a freshly loaded
// update. The update must not be used afterwards.
func (pv *Preview) UpdateWith(update *Preview) {
	pv.Kind = update.Kind
	pv.Lines = update.Lines
	pv.Image = update.Image
	pv.ReloadWidth = update.ReloadWidth
	pv.ReloadHeight = update.ReloadHeight
	pv.LoadTime = update.LoadTime
	pv.Mtime = update.Mtime
	pv.Err = update.Err
	pv.Loading = false
}

// NeedsRegrow reports whether the viewport grew past the dimensions the
// preview was loaded for.
func (pv *Preview) NeedsRegrow(height, width int) bool {
	return pv.ReloadHeight < height || pv.ReloadWidth < width
}

// Stale compares an observed mtime against the cached mtime and load
// time: the preview is stale when the file changed after it was loaded,
// with a one-second grace window. Whole seconds only.
func (pv *Preview) Stale(mtime time.Time) bool {
	return mtime.Unix() > pv.Mtime.Unix() || mtime.Unix() > pv.LoadTime.Unix()-1
}
