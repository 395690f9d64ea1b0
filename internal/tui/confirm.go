package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is the destructive-action gate: deletes only proceed after an
// explicit yes.
type confirmModel struct {
	prompt   string
	targetID string
	yes      bool
}

func newConfirmModel(prompt, targetID string) confirmModel {
	return confirmModel{prompt: prompt, targetID: targetID}
}

// Update consumes a key and reports whether the overlay is done and whether
// the action was confirmed.
func (c confirmModel) Update(msg tea.KeyMsg) (confirmModel, bool, bool) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		c.yes = !c.yes
		return c, false, false
	case "y", "Y":
		return c, true, true
	case "n", "N", "esc":
		return c, true, false
	case "enter":
		return c, true, c.yes
	}
	return c, false, false
}

func (c confirmModel) View(theme Theme, width int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Error).
		Padding(1, 2)

	yes := " yes "
	no := " no "
	sel := lipgloss.NewStyle().Bold(true).Reverse(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextMuted)
	if c.yes {
		yes = sel.Render(yes)
		no = dim.Render(no)
	} else {
		yes = dim.Render(yes)
		no = sel.Render(no)
	}

	var b strings.Builder
	b.WriteString(theme.Banner.Render(c.prompt))
	b.WriteString("\n\n")
	b.WriteString(yes + "   " + no)
	b.WriteString("\n")
	b.WriteString(theme.Footer.Render("y confirm · n/esc cancel"))

	content := box.Render(b.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}
