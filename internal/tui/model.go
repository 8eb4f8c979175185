package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/yoockh/isthissoup/internal/console"
)

// SnapshotMsg carries a console state change into the update loop.
type SnapshotMsg console.Snapshot

type keymap struct {
	Ask  key.Binding
	Quit key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Ask:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ea580c"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type Options struct {
	// GlamourStyle is a glamour standard style name ("dark", "light",
	// "notty"). Empty means "dark".
	GlamourStyle string
}

type Model struct {
	console *console.Console
	updates *mailbox

	input  textinput.Model
	answer viewport.Model
	keys   keymap
	style  string
	width  int

	last console.Snapshot
}

func New(asker console.Asker, opts Options) Model {
	in := textinput.New()
	in.Focus()
	in.Placeholder = "ramen"
	in.Prompt = "Is "
	in.CharLimit = 256

	style := opts.GlamourStyle
	if style == "" {
		style = "dark"
	}

	updates := newMailbox()
	c := console.New(asker, updates.put)

	return Model{
		console: c,
		updates: updates,
		input:   in,
		answer:  viewport.New(80, 16),
		keys:    defaultKeymap(),
		style:   style,
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen delivers the next console snapshot as a message.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(m.updates.take())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.answer.Width = msg.Width
		m.answer.Height = max(msg.Height-6, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.console.Cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Ask):
			m.console.Submit(context.Background(), m.input.Value())
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case SnapshotMsg:
		s := console.Snapshot(msg)
		// snapshots of a superseded request can arrive late
		if s.RequestID >= m.last.RequestID {
			m.last = s
			m.refresh()
		}
		return m, m.listen()
	}
	return m, nil
}

func (m *Model) refresh() {
	var body string
	switch m.last.State {
	case console.Idle:
		body = ""
	case console.Submitting:
		body = "Pondering..."
	case console.Streaming:
		body = m.last.Answer
	case console.Done:
		body = m.renderMarkdown(m.last.Answer)
	case console.Failed:
		body = failStyle.Render(m.last.Answer)
	}
	m.answer.SetContent(body)
	m.answer.GotoTop()
}

func (m Model) renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Is This Soup?"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString(" soup?\n\n")
	if m.last.State != console.Idle {
		b.WriteString(headingStyle.Render("The Soup Oracle Says:"))
		b.WriteString("\n")
		b.WriteString(m.answer.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s • %s",
		m.keys.Ask.Help().Key+" "+m.keys.Ask.Help().Desc,
		m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc)))
	return b.String()
}
