package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/app"
)

type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
	focusThread
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewTitle
	promptRenameTitle
	promptUploadPath
)

type (
	conversationsLoadedMsg struct{ err error }
	conversationCreatedMsg struct {
		conv app.Conversation
		err  error
	}
	conversationRemovedMsg struct {
		id  string
		err error
	}
	conversationRenamedMsg struct {
		id  string
		err error
	}
	threadLoadedMsg struct {
		id  string
		err error
	}
	exchangeDoneMsg struct{ sub app.Submission }
	uploadDoneMsg   struct {
		doc app.DocumentInfo
		err error
	}
	healthMsg struct{ err error }
	spinMsg   struct{}
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type Model struct {
	app   *app.Application
	theme Theme
	help  helpModel

	width  int
	height int
	ready  bool

	focus      focusArea
	sidebarSel int // -1 is the unfiled entry

	input    textarea.Model
	prompt   textinput.Model
	active   promptKind
	renameID string

	confirm    *confirmModel
	showHelp   bool
	thread     viewport.Model
	markdown   *MarkdownRenderer
	statusText string
	banner     string
	uploading  bool
	spinnerPos int
}

func New(application *app.Application) *Model {
	ta := textarea.New()
	ta.Placeholder = "Upload a document (ctrl+u), then ask a question…"
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	ti := textinput.New()
	ti.CharLimit = 512

	theme := NewTheme(application.Config.Theme)

	m := &Model{
		app:        application,
		theme:      theme,
		help:       newHelpModel(),
		width:      100,
		height:     30,
		focus:      focusComposer,
		sidebarSel: -1,
		input:      ta,
		prompt:     ti,
		markdown:   NewMarkdownRenderer(theme),
		statusText: "Ready",
	}
	if application.Client.Mock() {
		m.statusText = "Mock mode (no backend)"
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadConversationsCmd(), m.healthCmd())
}

// Commands. Each runs off the Update goroutine and mutates the store through
// the gateway/controller; Update re-reads snapshots when the message lands.

func (m *Model) ctx() context.Context {
	return context.Background()
}

func (m *Model) loadConversationsCmd() tea.Cmd {
	return func() tea.Msg {
		return conversationsLoadedMsg{err: m.app.Gateway.Load(m.ctx())}
	}
}

func (m *Model) healthCmd() tea.Cmd {
	return func() tea.Msg {
		return healthMsg{err: m.app.Client.Health(m.ctx())}
	}
}

func (m *Model) createConversationCmd(title string) tea.Cmd {
	return func() tea.Msg {
		conv, err := m.app.Gateway.Create(m.ctx(), title)
		return conversationCreatedMsg{conv: conv, err: err}
	}
}

func (m *Model) removeConversationCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return conversationRemovedMsg{id: id, err: m.app.Gateway.Remove(m.ctx(), id)}
	}
}

func (m *Model) renameConversationCmd(id, title string) tea.Cmd {
	return func() tea.Msg {
		return conversationRenamedMsg{id: id, err: m.app.Gateway.Rename(m.ctx(), id, title)}
	}
}

func (m *Model) setActiveCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return threadLoadedMsg{id: id, err: m.app.Gateway.SetActive(m.ctx(), id)}
	}
}

func (m *Model) completeExchangeCmd(sub app.Submission) tea.Cmd {
	return func() tea.Msg {
		m.app.Exchanges.Complete(m.ctx(), sub)
		return exchangeDoneMsg{sub: sub}
	}
}

func (m *Model) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.app.Upload(m.ctx(), path)
		return uploadDoneMsg{doc: doc, err: err}
	}
}

func (m *Model) spinTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m *Model) busy() bool {
	return m.uploading || m.app.Store.PendingCount() > 0
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		layout := m.computeLayout()
		if !m.ready {
			m.thread = viewport.New(layout.threadW, layout.threadH)
			m.ready = true
		} else {
			m.thread.Width = layout.threadW
			m.thread.Height = layout.threadH
		}
		m.input.SetWidth(max(10, layout.inputW))
		m.prompt.Width = max(10, layout.inputW)
		m.refreshThread()
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case conversationsLoadedMsg:
		if msg.err != nil {
			m.banner = "Could not load conversations: " + msg.err.Error()
		} else {
			m.banner = ""
		}
		return m, nil

	case conversationCreatedMsg:
		if msg.err != nil {
			m.banner = "Could not create conversation: " + msg.err.Error()
			return m, nil
		}
		m.banner = ""
		m.sidebarSel = 0
		m.statusText = "Opened " + msg.conv.Title
		m.refreshThread()
		return m, nil

	case conversationRemovedMsg:
		if msg.err != nil {
			m.banner = "Could not delete conversation: " + msg.err.Error()
			return m, nil
		}
		m.banner = ""
		if m.sidebarSel >= len(m.app.Store.Conversations()) {
			m.sidebarSel = len(m.app.Store.Conversations()) - 1
		}
		m.statusText = "Conversation deleted"
		m.refreshThread()
		return m, nil

	case conversationRenamedMsg:
		if msg.err != nil {
			m.banner = "Could not rename conversation: " + msg.err.Error()
		}
		return m, nil

	case threadLoadedMsg:
		if msg.err != nil {
			m.banner = "Could not load messages: " + msg.err.Error()
		}
		m.refreshThread()
		m.thread.GotoBottom()
		return m, nil

	case exchangeDoneMsg:
		m.refreshThread()
		m.thread.GotoBottom()
		if !m.busy() {
			m.statusText = "Ready"
		}
		return m, nil

	case uploadDoneMsg:
		m.uploading = false
		if msg.err != nil {
			m.statusText = "Upload failed: " + msg.err.Error()
			return m, nil
		}
		m.statusText = uploadStatus(msg.doc)
		m.input.Placeholder = "Ask about " + msg.doc.Filename + "…"
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.banner = "Backend unreachable: " + msg.err.Error()
		}
		return m, nil

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		m.refreshThread()
		if m.busy() {
			return m, m.spinTick()
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

func uploadStatus(doc app.DocumentInfo) string {
	if doc.Note != "" {
		return doc.Filename + " · " + doc.Note
	}
	if doc.TotalChunks > 0 {
		return fmt.Sprintf("%s · %d chunks indexed", doc.Filename, doc.TotalChunks)
	}
	return doc.Filename + " uploaded"
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.help.keys

	// Overlays eat keys first.
	if m.confirm != nil {
		c, done, confirmed := m.confirm.Update(msg)
		m.confirm = &c
		if done {
			target := c.targetID
			m.confirm = nil
			if confirmed {
				return m, m.removeConversationCmd(target)
			}
		}
		return m, nil
	}
	if m.showHelp {
		if key.Matches(msg, keys.CloseLayer) || key.Matches(msg, keys.Help) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.active != promptNone {
		return m.updatePrompt(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.CloseLayer):
		m.banner = ""
		return m, nil

	case key.Matches(msg, keys.FocusNext):
		m.cycleFocus()
		return m, nil

	case key.Matches(msg, keys.NewConvo):
		return m.openPrompt(promptNewTitle, "Conversation title", ""), nil

	case key.Matches(msg, keys.Rename):
		conv, ok := m.selectedConversation()
		if !ok {
			return m, nil
		}
		m.renameID = conv.ID
		return m.openPrompt(promptRenameTitle, "New title", conv.Title), nil

	case key.Matches(msg, keys.Delete):
		conv, ok := m.selectedConversation()
		if !ok {
			return m, nil
		}
		c := newConfirmModel(fmt.Sprintf("Delete conversation %q?", conv.Title), conv.ID)
		m.confirm = &c
		return m, nil

	case key.Matches(msg, keys.Upload):
		return m.openPrompt(promptUploadPath, "Path to PDF/DOCX/TXT", ""), nil

	case key.Matches(msg, keys.Analyze):
		sub, err := m.app.Exchanges.SubmitAnalysis()
		if err != nil {
			m.statusText = "Upload a document first"
			return m, nil
		}
		m.statusText = "Thinking…"
		m.refreshThread()
		m.thread.GotoBottom()
		return m, tea.Batch(m.completeExchangeCmd(sub), m.spinTick())

	case key.Matches(msg, keys.Unfiled):
		m.sidebarSel = -1
		return m, m.setActiveCmd("")

	case key.Matches(msg, keys.Refresh):
		return m, m.loadConversationsCmd()

	case key.Matches(msg, keys.Enter):
		switch m.focus {
		case focusSidebar:
			if m.sidebarSel == -1 {
				return m, m.setActiveCmd("")
			}
			if conv, ok := m.selectedConversation(); ok {
				return m, m.setActiveCmd(conv.ID)
			}
			return m, nil
		case focusComposer:
			return m.submitQuestion()
		}

	case msg.Type == tea.KeyUp:
		switch m.focus {
		case focusSidebar:
			if m.sidebarSel > -1 {
				m.sidebarSel--
			}
			return m, nil
		case focusThread:
			m.thread.LineUp(1)
			return m, nil
		}
	case msg.Type == tea.KeyDown:
		switch m.focus {
		case focusSidebar:
			if m.sidebarSel < len(m.app.Store.Conversations())-1 {
				m.sidebarSel++
			}
			return m, nil
		case focusThread:
			m.thread.LineDown(1)
			return m, nil
		}
	case msg.Type == tea.KeyPgUp:
		m.thread.ViewUp()
		return m, nil
	case msg.Type == tea.KeyPgDown:
		m.thread.ViewDown()
		return m, nil
	}

	return m.updateChildren(msg)
}

func (m *Model) submitQuestion() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if !m.app.Exchanges.CanSubmit(question) {
		// Validation failures stay silent; the composer simply does nothing.
		return m, nil
	}
	sub, err := m.app.Exchanges.Submit(question)
	if err != nil {
		return m, nil
	}
	// Composer clears synchronously; the question is already in the thread.
	m.input.Reset()
	m.statusText = "Thinking…"
	m.refreshThread()
	m.thread.GotoBottom()
	return m, tea.Batch(m.completeExchangeCmd(sub), m.spinTick())
}

func (m *Model) openPrompt(kind promptKind, placeholder, value string) *Model {
	m.active = kind
	m.prompt.Placeholder = placeholder
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	m.prompt.Focus()
	m.input.Blur()
	return m
}

func (m *Model) closePrompt() {
	m.active = promptNone
	m.renameID = ""
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.input.Focus()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.help.keys
	switch {
	case key.Matches(msg, keys.CloseLayer):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.prompt.Value())
		kind, renameID := m.active, m.renameID
		m.closePrompt()
		switch kind {
		case promptNewTitle:
			if value == "" {
				// Empty title is a local validation failure; nothing is sent.
				return m, nil
			}
			return m, m.createConversationCmd(value)
		case promptRenameTitle:
			// Empty input cancels the edit without a network call.
			return m, m.renameConversationCmd(renameID, value)
		case promptUploadPath:
			if value == "" {
				return m, nil
			}
			m.uploading = true
			m.statusText = "Uploading…"
			return m, tea.Batch(m.uploadCmd(value), m.spinTick())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.focus == focusComposer && m.active == promptNone {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.thread, cmd = m.thread.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusComposer:
		m.focus = focusSidebar
		m.input.Blur()
	case focusSidebar:
		m.focus = focusThread
	default:
		m.focus = focusComposer
		m.input.Focus()
	}
}

func (m *Model) selectedConversation() (app.Conversation, bool) {
	convs := m.app.Store.Conversations()
	if m.sidebarSel < 0 || m.sidebarSel >= len(convs) {
		return app.Conversation{}, false
	}
	return convs[m.sidebarSel], true
}
