package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Quit       key.Binding
	Enter      key.Binding
	FocusNext  key.Binding
	NewConvo   key.Binding
	Rename     key.Binding
	Delete     key.Binding
	Upload     key.Binding
	Analyze    key.Binding
	Unfiled    key.Binding
	Refresh    key.Binding
	Help       key.Binding
	CloseLayer key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send / open"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		NewConvo: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new conversation"),
		),
		Rename: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "rename conversation"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete conversation"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "upload document"),
		),
		Analyze: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "comprehensive analysis"),
		),
		Unfiled: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "unfiled mode"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "reload conversations"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		CloseLayer: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / cancel"),
		),
	}
}

type helpModel struct {
	keys  keyMap
	width int
}

func newHelpModel() helpModel {
	return helpModel{keys: defaultKeyMap(), width: 80}
}

func (m *helpModel) SetWidth(width int) {
	m.width = width
}

func (m helpModel) View(theme Theme) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
	section := lipgloss.NewStyle().Bold(true).Foreground(theme.TextMuted)
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.TextPrimary)

	var b strings.Builder
	b.WriteString(title.Render("docchat help"))
	b.WriteString("\n\n")

	b.WriteString(section.Render("chat"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  submit question\n", keyStyle.Render("enter")))
	b.WriteString(fmt.Sprintf("  %s  upload document\n", keyStyle.Render("ctrl+u")))
	b.WriteString(fmt.Sprintf("  %s  comprehensive analysis\n", keyStyle.Render("ctrl+a")))
	b.WriteString("\n")

	b.WriteString(section.Render("conversations"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  new conversation\n", keyStyle.Render("ctrl+n")))
	b.WriteString(fmt.Sprintf("  %s  rename selected\n", keyStyle.Render("ctrl+r")))
	b.WriteString(fmt.Sprintf("  %s  delete selected\n", keyStyle.Render("ctrl+d")))
	b.WriteString(fmt.Sprintf("  %s  back to unfiled mode\n", keyStyle.Render("ctrl+o")))
	b.WriteString(fmt.Sprintf("  %s  reload list\n", keyStyle.Render("ctrl+l")))
	b.WriteString("\n")

	b.WriteString(section.Render("navigation"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  switch focus between panes\n", keyStyle.Render("tab")))
	b.WriteString(fmt.Sprintf("  %s  move selection / scroll\n", keyStyle.Render("up/down")))
	b.WriteString(fmt.Sprintf("  %s  close this help\n", keyStyle.Render("esc")))

	b.WriteString("\n")
	b.WriteString(theme.Footer.Render("ctrl+c quit | tab focus | enter send"))
	return b.String()
}
