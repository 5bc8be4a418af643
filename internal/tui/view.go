package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/file"
	"github.com/michaelscutari/fex/internal/preview"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(pathStyle.Render(m.app.Fm.Pwd()))
	b.WriteString("\n")

	b.WriteString(m.renderColumns())
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) columnWidths() []int {
	ratios := m.app.Cfg.Ratios
	total := 0
	for _, r := range ratios {
		total += r
	}
	if total == 0 {
		return []int{m.width}
	}
	widths := make([]int, len(ratios))
	used := 0
	for i, r := range ratios {
		widths[i] = m.width * r / total
		used += widths[i]
	}
	widths[len(widths)-1] += m.width - used
	return widths
}

func (m *Model) renderColumns() string {
	widths := m.columnWidths()
	rows := m.viewRows()

	visible := m.app.Fm.VisibleDirs()
	ncols := len(visible)

	var cols []string
	// parents render left of the current dir, the one closest to the root
	// leftmost
	for i := ncols - 1; i >= 0; i-- {
		w := widths[ncols-1-i]
		cols = append(cols, m.renderDir(visible[i], w, rows, i == 0))
	}

	if m.app.Cfg.Preview && len(widths) > ncols {
		w := widths[len(widths)-1]
		cols = append(cols, m.renderPreviewColumn(w, rows))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *Model) renderDir(d *dirmodel.Dir, width, rows int, isCurrent bool) string {
	lines := make([]string, rows)
	if d == nil {
		return strings.Join(lines, "\n")
	}

	if d.IsLoading() {
		if m.app.ShowLoading {
			lines[0] = loadingStyle.Render(pad("loading...", width))
		}
		return strings.Join(lines, "\n")
	}

	if d.Err != nil {
		lines[0] = messageStyle.Render(pad(errString(d), width))
		return strings.Join(lines, "\n")
	}

	files := d.Files()
	if len(files) == 0 {
		label := "empty"
		if d.TotalLength() > 0 {
			label = "contains hidden files"
		}
		lines[0] = loadingStyle.Render(pad(label, width))
		return strings.Join(lines, "\n")
	}

	top := d.Ind - d.Pos
	if top < 0 {
		top = 0
	}
	if top > len(files)-1 {
		top = len(files) - 1
	}

	for row := 0; row < rows; row++ {
		i := top + row
		if i >= len(files) {
			break
		}
		lines[row] = m.renderFile(d, files[i], i == d.Ind && isCurrent, width)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFile(d *dirmodel.Dir, f *file.File, isCursor bool, width int) string {
	marker := " "
	if m.app.Fm.SelectionContains(f.Path()) {
		marker = selectedMarkStyle.Render("*")
	}

	info := ""
	if f.IsDir() {
		if n := f.Dircount(); n >= 0 {
			info = FormatCount(int64(n))
		}
	} else {
		info = FormatSize(f.Size())
	}

	name := f.Name()
	if f.IsLink() {
		name += " -> " + f.LinkTarget()
	}
	avail := width - lipgloss.Width(info) - 3
	if avail < 1 {
		avail = 1
	}
	name = truncate(name, avail)
	line := fmt.Sprintf(" %s%-*s %s", marker, avail, name, info)
	line = truncate(line, width)

	if isCursor {
		return cursorStyle.Render(pad(line, width))
	}
	switch {
	case f.IsBroken():
		return brokenStyle.Render(line)
	case f.IsLink():
		return symlinkStyle.Render(line)
	case f.IsDir():
		return dirStyle.Render(line)
	case f.IsExec():
		return execStyle.Render(line)
	default:
		return fileStyle.Render(line)
	}
}

func (m *Model) renderPreviewColumn(width, rows int) string {
	if pd := m.app.Fm.PreviewDir(); pd != nil {
		return m.renderDir(pd, width, rows, false)
	}

	pv := m.app.FilePreview()
	if pv == nil {
		return strings.Repeat("\n", rows-1)
	}

	lines := make([]string, rows)
	switch {
	case pv.Loading:
		lines[0] = loadingStyle.Render("loading...")
	case pv.Err != nil:
		lines[0] = messageStyle.Render(truncate(pv.Err.Error(), width))
	case pv.Kind == preview.KindImage && pv.Image != nil:
		lines[0] = previewStyle.Render(fmt.Sprintf("[%s image %dx%d]",
			pv.Image.Format, pv.Image.Width, pv.Image.Height))
	default:
		for i, line := range pv.Lines {
			if i >= rows {
				break
			}
			lines[i] = previewStyle.Render(truncate(line, width))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) statusLine() string {
	d := m.app.Fm.CurrentDir()

	var parts []string
	switch m.mode {
	case modeFilter:
		parts = append(parts, filterStyle.Render("/"+m.input+"_"))
	case modeCommand:
		parts = append(parts, filterStyle.Render(":"+m.input+"_"))
	case modeFind:
		parts = append(parts, filterStyle.Render("f"+m.input+"_"))
	}

	if msg := firstNonEmpty(m.app.Message, m.app.Fm.Message); msg != "" {
		parts = append(parts, messageStyle.Render(msg))
	}

	if fs := d.FilterString(); fs != "" && m.mode != modeFilter {
		parts = append(parts, filterStyle.Render(fmt.Sprintf("filter: %q", fs)))
	}

	if n := len(m.app.Fm.Selection()); n > 0 {
		parts = append(parts, selectedMarkStyle.Render(fmt.Sprintf("%d selected", n)))
	}
	if n := len(m.app.Fm.PasteBuffer()); n > 0 {
		parts = append(parts, statusStyle.Render(
			fmt.Sprintf("%d to %s", n, m.app.Fm.PasteModeGet())))
	}
	if m.app.Fm.VisualActive() {
		parts = append(parts, selectedMarkStyle.Render("VISUAL"))
	}
	if d.FlattenLevel > 0 {
		parts = append(parts, statusStyle.Render(fmt.Sprintf("flat:%d", d.FlattenLevel)))
	}
	if m.app.ShowLoading {
		parts = append(parts, loadingStyle.Render("loading"))
	}

	pos := "0/0"
	if d.Length() > 0 {
		pos = fmt.Sprintf("%d/%d", d.Ind+1, d.Length())
	}
	if cur := m.app.Fm.CurrentFile(); cur != nil && !cur.IsDir() {
		parts = append(parts, sizeStyle.Render(FormatSize(cur.Size())))
	}
	parts = append(parts, statusStyle.Render(pos))

	return strings.Join(parts, statusStyle.Render(" | "))
}

func errString(d *dirmodel.Dir) string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return string(runes[:1])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
