// Package tui renders the file manager with bubbletea. The bubbletea
// Update goroutine is the main loop: worker results wake it through
// Program.Send and are drained before the next draw.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/michaelscutari/fex/internal/app"
	"github.com/michaelscutari/fex/internal/keytrie"
)

// inputMode selects what typed runes mean.
type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modeCommand
	modeFind
)

// resultsMsg wakes the loop to drain the result queue. Repeated wake-ups
// collapse queue-side.
type resultsMsg struct{}

// redrawMsg forces a repaint without queued results.
type redrawMsg struct{}

// Model holds the TUI state.
type Model struct {
	app     *app.App
	program *tea.Program

	width  int
	height int

	mode  inputMode
	input string

	pending []string
	keys    *keytrie.Node

	quitting bool
}

// NewModel creates a TUI over the core.
func NewModel(a *app.App) *Model {
	m := &Model{app: a, keys: defaultBindings()}
	return m
}

// Run starts the bubbletea program and blocks until exit.
func Run(a *app.App) error {
	m := NewModel(a)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p

	a.SetWake(func() { p.Send(resultsMsg{}) })
	a.OnRedraw = func() { p.Send(redrawMsg{}) }

	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	// results may already be queued from startup loads
	return func() tea.Msg { return resultsMsg{} }
}

func defaultBindings() *keytrie.Node {
	root := keytrie.New()
	bind := func(command, desc string, keys ...string) {
		root.Insert(keys, command, desc)
	}

	bind("down", "move down", "j")
	bind("down", "move down", "down")
	bind("up", "move up", "k")
	bind("up", "move up", "up")
	bind("open", "open file or directory", "l")
	bind("open", "open file or directory", "enter")
	bind("open", "open file or directory", "right")
	bind("updir", "go to parent", "h")
	bind("updir", "go to parent", "left")
	bind("updir", "go to parent", "backspace")
	bind("top", "go to top", "g", "g")
	bind("bot", "go to bottom", "G")
	bind("scroll-up", "scroll up", "ctrl+y")
	bind("scroll-down", "scroll down", "ctrl+e")
	bind("page-up", "page up", "pgup")
	bind("page-down", "page down", "pgdown")
	bind("toggle-select", "toggle selection", " ")
	bind("visual", "visual selection", "v")
	bind("clear-select", "clear selection", "esc")
	bind("reverse-select", "reverse selection", "g", "r")
	bind("copy", "yank to paste buffer", "y", "y")
	bind("move", "cut to paste buffer", "d", "d")
	bind("hidden", "toggle hidden files", "z", "h")
	bind("flatten", "flatten one level deeper", "z", "f")
	bind("unflatten", "unflatten", "z", "F")
	bind("sort-natural", "sort naturally", "o", "n")
	bind("sort-size", "sort by size", "o", "s")
	bind("sort-mtime", "sort by mtime", "o", "m")
	bind("sort-random", "sort randomly", "o", "r")
	bind("reverse-sort", "reverse sort order", "o", "R")
	bind("filter", "filter entries", "/")
	bind("find", "find by prefix", "f")
	bind("command", "command line", ":")
	bind("automark", "jump to previous dir", "'", "'")
	bind("reload", "reload visible dirs", "ctrl+r")
	bind("drop-caches", "drop caches and reload", "ctrl+l")
	bind("quit", "quit", "q")
	bind("quit", "quit", "ctrl+c")

	return root
}
