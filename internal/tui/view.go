package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docchat/internal/app"
)

type layout struct {
	sidebarW int
	threadW  int
	threadH  int
	inputW   int
}

func (m *Model) computeLayout() layout {
	sidebarW := 28
	if m.width < 90 {
		sidebarW = 20
	}
	threadW := m.width - sidebarW - 6
	if threadW < 30 {
		threadW = 30
	}
	threadH := m.height - 8
	if threadH < 5 {
		threadH = 5
	}
	return layout{
		sidebarW: sidebarW,
		threadW:  threadW,
		threadH:  threadH,
		inputW:   m.width - 6,
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "…"
	}
	if m.showHelp {
		return m.help.View(m.theme)
	}

	lay := m.computeLayout()
	top := m.renderTopBar()
	main := m.renderMain(lay)
	input := m.renderInput(lay)
	footer := m.renderFooter()

	parts := []string{top}
	if m.banner != "" {
		parts = append(parts, m.theme.Banner.Render("⚠ "+m.banner+"  (ctrl+l retries, esc dismisses)"))
	}
	parts = append(parts, main, input, footer)
	view := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.confirm != nil {
		view += "\n" + m.confirm.View(m.theme, m.width)
	}
	return view
}

func (m *Model) renderTopBar() string {
	t := m.theme
	title := t.TopBarTitle.Render("docchat")

	server := m.app.Config.ServerURL
	if m.app.Client.Mock() {
		server = "mock backend"
	}

	doc := "no document"
	if d := m.app.Store.Document(); d.ID != "" {
		doc = d.Filename
	}
	if id := m.app.Store.ActiveID(); id != "" {
		if conv, ok := m.app.Store.Conversation(id); ok {
			doc = conv.Title
			if conv.DocumentName != "" {
				doc += " · " + conv.DocumentName
			}
		}
	}

	meta := t.TopBarMeta.Render(server + "  ·  " + doc)
	return t.TopBar.Render(title + "  " + meta)
}

func (m *Model) renderMain(lay layout) string {
	t := m.theme

	sidebarStyle := t.Pane
	if m.focus == focusSidebar {
		sidebarStyle = t.PaneFocused
	}
	threadStyle := t.Pane
	if m.focus == focusThread {
		threadStyle = t.PaneFocused
	}

	sidebar := renderSidebar(
		t,
		m.app.Store.Conversations(),
		m.app.Store.ActiveID(),
		m.sidebarSel,
		m.focus == focusSidebar,
		lay.sidebarW,
		lay.threadH,
	)
	sidebarPane := sidebarStyle.Width(lay.sidebarW).Height(lay.threadH).Render(
		t.PaneTitle.Render("conversations") + "\n" + sidebar,
	)
	threadPane := threadStyle.Width(lay.threadW).Height(lay.threadH).Render(m.thread.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarPane, threadPane)
}

func (m *Model) renderInput(lay layout) string {
	t := m.theme
	if m.active != promptNone {
		label := map[promptKind]string{
			promptNewTitle:    "new conversation",
			promptRenameTitle: "rename",
			promptUploadPath:  "upload",
		}[m.active]
		return t.InputBoxF.Width(lay.inputW).Render(t.PaneTitle.Render(label+": ") + m.prompt.View())
	}

	style := t.InputBox
	if m.focus == focusComposer {
		style = t.InputBoxF
	}
	return style.Width(lay.inputW).Render(m.input.View())
}

func (m *Model) renderFooter() string {
	t := m.theme
	status := m.statusText
	if m.busy() {
		status = t.Spinner.Render(spinnerFrames[m.spinnerPos]) + " " + status
	}
	hints := "enter send · ctrl+n new · ctrl+u upload · ctrl+a analyze · f1 help"
	return t.Footer.Render(status + "    " + hints)
}

// refreshThread rebuilds the viewport content from the store snapshot.
func (m *Model) refreshThread() {
	if !m.ready {
		return
	}
	exchanges := m.app.Store.Exchanges()
	if len(exchanges) == 0 {
		m.thread.SetContent(m.theme.RoleSys.Render(m.emptyThreadText()))
		return
	}

	var b strings.Builder
	for i, e := range exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderExchange(e))
	}
	m.thread.SetContent(b.String())
}

func (m *Model) emptyThreadText() string {
	if m.app.Store.ActiveID() == "" {
		if m.app.Store.Document().ID == "" {
			return "Upload a document with ctrl+u to get started.\nQuestions asked here are not saved unless you open a conversation."
		}
		return "Ask a question below. Unfiled questions are not saved."
	}
	return "No messages yet. Ask the first question below."
}

func (m *Model) renderExchange(e app.Exchange) string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.RoleYou.Render("you"))
	b.WriteString("  ")
	b.WriteString(e.Question)
	b.WriteString("\n")

	if e.Pending {
		b.WriteString(t.Spinner.Render(spinnerFrames[m.spinnerPos]))
		b.WriteString(" ")
		b.WriteString(t.RoleSys.Render(app.AnswerPending))
		b.WriteString("\n")
		return b.String()
	}

	role := t.RoleAI.Render("assistant")
	if e.TaskType == app.TaskError {
		role = t.RoleErr.Render("error")
	}
	b.WriteString(role)
	if badge := taskBadgeText(e.TaskType); badge != "" {
		b.WriteString(" ")
		b.WriteString(t.TaskBadge(e.TaskType).Render("[" + badge + "]"))
	}
	b.WriteString("\n")
	b.WriteString(m.markdown.Render(e.Answer))
	b.WriteString("\n")

	if len(e.Sections) > 0 {
		b.WriteString(t.SectionHeader.Render(fmt.Sprintf("sources (%d)", len(e.Sections))))
		b.WriteString("\n")
		for _, s := range e.Sections {
			line := "  " + truncate(strings.TrimSpace(s.Body()), 100)
			if s.Score > 0 {
				line += fmt.Sprintf("  (%.2f)", s.Score)
			}
			b.WriteString(t.SectionBody.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func taskBadgeText(task app.TaskType) string {
	switch task {
	case app.TaskTranslation, app.TaskCompliance, app.TaskAnalysis:
		return string(task)
	case app.TaskError, "":
		return ""
	default:
		return string(app.TaskUnknown)
	}
}
