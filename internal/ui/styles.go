// Package ui holds the console styling and prompts shared by the commands.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	White  = lipgloss.Color("#E2E2E2")
	Gray   = lipgloss.Color("#888888")
	Muted  = lipgloss.Color("#555555")
	Blue   = lipgloss.Color("#5FAFFF")
	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")
)

// Glyphs prefixed to console messages.
const (
	GlyphSuccess = "✓"
	GlyphInfo    = "ℹ"
	GlyphWarning = "⚠"
	GlyphFailure = "✗"
)

// styles are bound to a renderer so colors follow the destination writer
// rather than the process stdout.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(White).Underline(true),
		label:   r.NewStyle().Bold(true).Foreground(Gray),
		muted:   r.NewStyle().Foreground(Muted),
		accent:  r.NewStyle().Foreground(Blue),
		success: r.NewStyle().Bold(true).Foreground(Green),
		info:    r.NewStyle().Bold(true).Foreground(Blue),
		warning: r.NewStyle().Bold(true).Foreground(Yellow),
		failure: r.NewStyle().Bold(true).Foreground(Red),
	}
}
