package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/michaelscutari/fex/internal/dirmodel"
	"github.com/michaelscutari/fex/internal/fm"
	"github.com/michaelscutari/fex/internal/hooks"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.app.Resize(msg.Width, m.viewRows())
		return m, nil

	case tea.FocusMsg:
		m.app.Hooks.Run(hooks.FocusGained)
		return m, nil

	case tea.BlurMsg:
		m.app.Hooks.Run(hooks.FocusLost)
		return m, nil

	case resultsMsg:
		m.app.Drain()
		return m, nil

	case redrawMsg:
		return m, nil
	}

	return m, nil
}

// viewRows returns the rows available to the columns (header + status
// line are subtracted).
func (m *Model) viewRows() int {
	rows := m.height - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal {
		return m.handleInputKey(msg)
	}

	key := msg.String()
	m.pending = append(m.pending, key)

	node, _ := m.keys.Lookup(m.pending)
	if node == nil {
		m.pending = nil
		return m, nil
	}
	if node.Command == "" {
		// unfinished chord
		return m, nil
	}
	m.pending = nil
	return m.dispatch(node.Command)
}

func (m *Model) dispatch(command string) (tea.Model, tea.Cmd) {
	f := m.app.Fm
	switch command {
	case "down":
		f.CursorMove(1)
		m.app.UpdateFilePreview()
	case "up":
		f.CursorMove(-1)
		m.app.UpdateFilePreview()
	case "page-down":
		f.CursorMove(m.viewRows() / 2)
		m.app.UpdateFilePreview()
	case "page-up":
		f.CursorMove(-m.viewRows() / 2)
		m.app.UpdateFilePreview()
	case "top":
		f.Top()
		m.app.UpdateFilePreview()
	case "bot":
		f.Bot()
		m.app.UpdateFilePreview()
	case "scroll-up":
		f.ScrollUp()
	case "scroll-down":
		f.ScrollDown()
	case "open":
		if opened := f.Open(); opened != nil {
			m.app.Message = "no opener configured for " + opened.Name()
		}
		m.app.UpdateFilePreview()
	case "updir":
		f.Updir()
		m.app.UpdateFilePreview()
	case "toggle-select":
		f.SelectionToggleCurrent()
		f.CursorMove(1)
	case "visual":
		f.SelectionVisualToggle()
	case "clear-select":
		f.SelectionVisualStop()
		f.SelectionClear()
		f.Filter("")
	case "reverse-select":
		f.SelectionReverse()
	case "copy":
		f.PasteSet(fm.PasteCopy)
	case "move":
		f.PasteSet(fm.PasteMove)
	case "hidden":
		f.SetHidden(!m.app.Cfg.Hidden)
	case "flatten":
		f.Flatten(f.CurrentDir().FlattenLevel + 1)
	case "unflatten":
		f.Flatten(0)
	case "sort-natural":
		f.SetSortType(dirmodel.SortNatural)
	case "sort-size":
		f.SetSortType(dirmodel.SortSize)
	case "sort-mtime":
		f.SetSortType(dirmodel.SortMtime)
	case "sort-random":
		f.SetSortType(dirmodel.SortRandom)
	case "reverse-sort":
		for _, d := range f.VisibleDirs() {
			if d != nil {
				d.Settings.Reverse = !d.Settings.Reverse
			}
		}
		f.Sort()
	case "filter":
		m.mode = modeFilter
		m.input = f.FilterString()
	case "find":
		m.mode = modeFind
		m.input = ""
	case "command":
		m.mode = modeCommand
		m.input = ""
	case "automark":
		f.JumpAutomark()
	case "reload":
		f.Reload()
	case "drop-caches":
		f.DropCaches()
	case "quit":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.acceptInput()

	case "esc":
		if m.mode == modeFilter {
			m.app.Fm.Filter("")
		}
		m.mode = modeNormal
		m.input = ""
		return m, nil

	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
			m.inputChanged()
		}
		return m, nil

	case "ctrl+c":
		m.mode = modeNormal
		m.input = ""
		return m, nil

	case "up":
		if m.mode == modeCommand {
			if line := m.app.History.Prev(m.input); line != "" {
				m.input = line
			}
		}
		return m, nil

	case "down":
		if m.mode == modeCommand {
			m.input = m.app.History.Next(m.input)
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes || msg.String() == " " {
		m.input += msg.String()
		m.inputChanged()
	}
	return m, nil
}

// inputChanged applies incremental modes on every keystroke.
func (m *Model) inputChanged() {
	switch m.mode {
	case modeFilter:
		m.app.Fm.Filter(m.input)
	case modeFind:
		found, unique := m.app.Fm.Find(m.input)
		if unique {
			m.mode = modeNormal
			m.input = ""
			m.app.UpdateFilePreview()
		} else if !found {
			m.input = ""
		}
	}
}

func (m *Model) acceptInput() (tea.Model, tea.Cmd) {
	input := m.input
	mode := m.mode
	m.mode = modeNormal
	m.input = ""

	switch mode {
	case modeFilter:
		m.app.History.Append("/", input)
	case modeFind:
		// cursor already moved incrementally
	case modeCommand:
		m.app.History.Append(":", input)
		return m.runCommand(input)
	}
	return m, nil
}

func (m *Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}
	f := m.app.Fm

	switch fields[0] {
	case "q", "quit":
		m.quitting = true
		return m, tea.Quit
	case "cd":
		if len(fields) > 1 {
			f.ChdirAsync(fields[1], true, true)
		}
	case "mark":
		if len(fields) > 1 && len(fields[1]) == 1 {
			f.MarkSave(rune(fields[1][0]), "")
		}
	case "jump":
		if len(fields) > 1 {
			if m.app.Visits != nil {
				if path, err := m.app.Visits.Match(fields[1]); err == nil && path != "" {
					f.ChdirAsync(path, true, true)
				} else {
					m.app.Message = "jump: no match for " + fields[1]
				}
			}
		}
	case "flatten":
		level := 1
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				level = n
			}
		}
		f.Flatten(level)
	case "fuzzy":
		if len(fields) > 1 {
			f.Fuzzy(strings.Join(fields[1:], " "))
		} else {
			f.Fuzzy("")
		}
	case "selwrite":
		if len(fields) > 1 {
			if err := f.SelectionWrite(fields[1]); err != nil {
				m.app.Message = err.Error()
			}
		}
	default:
		m.app.Message = "unknown command: " + fields[0]
	}
	return m, nil
}
