package tui

import (
	"fmt"
	"strings"

	"docchat/internal/app"
)

// renderSidebar draws the conversation list. Index -1 selects the synthetic
// "unfiled" entry at the top.
func renderSidebar(theme Theme, conversations []app.Conversation, activeID string, selected int, focused bool, width, height int) string {
	var b strings.Builder

	unfiled := "· unfiled"
	if activeID == "" {
		unfiled = theme.SidebarActive.Render("» unfiled")
	}
	if focused && selected == -1 {
		unfiled = theme.SidebarSel.Render("› unfiled")
	}
	b.WriteString(unfiled)
	b.WriteString("\n")

	for i, conv := range conversations {
		title := conv.Title
		if title == "" {
			title = conv.ID
		}
		title = truncate(title, width-6)

		line := "· " + title
		switch {
		case focused && i == selected:
			line = theme.SidebarSel.Render("› " + title)
		case conv.ID == activeID:
			line = theme.SidebarActive.Render("» " + title)
		default:
			line = theme.SidebarItem.Render(line)
		}
		b.WriteString(line)
		if conv.MessageCount > 0 {
			b.WriteString(theme.SidebarMeta.Render(fmt.Sprintf(" %d", conv.MessageCount)))
		}
		b.WriteString("\n")
	}

	if len(conversations) == 0 {
		b.WriteString(theme.SidebarMeta.Render("no conversations yet"))
		b.WriteString("\n")
		b.WriteString(theme.SidebarMeta.Render("ctrl+n creates one"))
		b.WriteString("\n")
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) > height {
		// Keep the selected line visible.
		start := 0
		sel := selected + 1 // offset for the unfiled entry
		if sel >= height {
			start = sel - height + 1
		}
		lines = lines[start:min(start+height, len(lines))]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if n <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
