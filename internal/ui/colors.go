package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500")

// Palette holds the styles used by the list views and prompts.
type Palette struct {
	prompt  lipgloss.Style
	confirm lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
}

// NewPalette builds a [Palette] from foreground colors for prompts, successes, errors and
// destructive confirmations.
func NewPalette(prompt, ok, failed, confirm string) *Palette {
	return &Palette{
		prompt:  NewBold(prompt).MarginBottom(1),
		confirm: NewBold(confirm).MarginBottom(1),
		ok:      NewStyle(ok),
		err:     NewBold(failed),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

// status renders the outcome of the last mutation.
func (p *Palette) status(text string, failed bool) string {
	if text == "" {
		return ""
	}
	if failed {
		return p.err.Render(text)
	}
	return p.ok.Render("✓ " + text)
}
