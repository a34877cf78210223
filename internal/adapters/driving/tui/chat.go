// Package tui provides an interactive chat interface for asking questions
// about one ingested document. It implements a driving adapter following
// hexagonal architecture principles.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// Asker is the TUI-facing subset of the ask service.
type Asker interface {
	Ask(ctx context.Context, documentID, sessionID, question string) (*driving.AskResult, error)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	citationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// answerMsg carries a completed ask round back into the update loop.
type answerMsg struct {
	result *driving.AskResult
	err    error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	asker      Asker
	ctx        context.Context
	documentID string
	docTitle   string
	sessionID  string

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	history []domain.HistoryEntry
	lastErr error
	waiting bool
	ready   bool
}

// New creates a chat model bound to one document.
func New(ctx context.Context, asker Asker, documentID, docTitle string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		asker:      asker,
		ctx:        ctx,
		documentID: documentID,
		docTitle:   docTitle,
		input:      ti,
		viewport:   viewport.New(0, 0),
		spin:       sp,
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-chatBoxStyle.GetHorizontalFrameSize())
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "esc", "q":
			if m.input.Value() == "" {
				return m, tea.Quit
			}
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question != "" && !m.waiting {
				m.input.Reset()
				m.waiting = true
				m.lastErr = nil
				return m, tea.Batch(m.spin.Tick, m.ask(question))
			}
		case "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "down":
			m.viewport.ScrollDown(1)
			return m, nil
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.sessionID = msg.result.SessionID
			m.history = msg.result.History
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := titleStyle.Render("docqa chat")
	subtitle := subtitleStyle.Render(fmt.Sprintf("Document: %s", m.docTitle))
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := "Enter to ask, Esc to quit."
	if m.waiting {
		status = m.spin.View() + " Thinking..."
	}
	if m.lastErr != nil {
		status = errorStyle.Render("Error: " + m.lastErr.Error())
	}

	return header + "\n" + subtitle + "\n" + chat + "\n" + input + "\n" + status
}

// SessionID returns the active session identifier, empty before the
// first answered question.
func (m Model) SessionID() string { return m.sessionID }

// ask issues the question off the update loop.
func (m Model) ask(question string) tea.Cmd {
	asker, ctx := m.asker, m.ctx
	documentID, sessionID := m.documentID, m.sessionID
	return func() tea.Msg {
		result, err := asker.Ask(ctx, documentID, sessionID, question)
		return answerMsg{result: result, err: err}
	}
}

// renderHistory formats the conversation, most recent exchange last.
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "Ask your first question about this document."
	}

	var b strings.Builder
	for i, entry := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + entry.Question))
		b.WriteString("\n")
		b.WriteString(entry.Answer)
		if len(entry.Citations) > 0 {
			b.WriteString("\n")
			b.WriteString(citationStyle.Render(renderCitations(entry.Citations)))
		}
	}
	return b.String()
}

// renderCitations formats citation labels on one line.
func renderCitations(citations []domain.Citation) string {
	labels := make([]string, len(citations))
	for i, c := range citations {
		if c.Page != nil {
			labels[i] = fmt.Sprintf("[Page %d, Chunk %d %.2f]", *c.Page, c.Index, c.Score)
		} else {
			labels[i] = fmt.Sprintf("[Chunk %d %.2f]", c.Index, c.Score)
		}
	}
	return "Sources: " + strings.Join(labels, " ")
}
