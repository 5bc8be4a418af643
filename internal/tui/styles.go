package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	// Colors
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#005B9A", Dark: "#4FA3FF"}
	colorText      = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#E6E6E6"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#4A4A4A", Dark: "#9A9A9A"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#C2185B", Dark: "#FF6FB3"}
	colorSuccess   = lipgloss.AdaptiveColor{Light: "#0B7A5F", Dark: "#6EE7B7"}
	colorWarning   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	colorError     = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F2726D"}
	colorMuted     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6F6F6F"}
	colorSelectBg  = lipgloss.AdaptiveColor{Light: "#DDEBFF", Dark: "#2B4C7E"}
	colorSelectFg  = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	// Styles
	pathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSelectFg).
			Background(colorSelectBg)

	dirStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(colorText)

	symlinkStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	brokenStyle = lipgloss.NewStyle().
			Foreground(colorError)

	execStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	selectedMarkStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				Bold(true)

	sizeStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	messageStyle = lipgloss.NewStyle().
			Foreground(colorError)

	filterStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	previewStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)
)

// FormatSize formats a byte count for display.
func FormatSize(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}

// FormatCount formats a count for display.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
