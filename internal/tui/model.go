// Package tui provides the interactive question-answering terminal UI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/usecases"
)

// QAPort is the TUI-facing subset of the question-answering service.
type QAPort interface {
	Ask(ctx context.Context, question string, topK int, evaluate bool) (*usecases.AskResult, error)
}

// Model is the Bubble Tea model for the interactive session.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	result   *usecases.AskResult
	status   string
	summary  string
	cursor   int
	ready    bool
	evaluate bool
}

// New creates a TUI model. summary is the one-line corpus description shown
// under the header.
func New(service QAPort, summary string, evaluate bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		summary:  summary,
		evaluate: evaluate,
		status:   "Ready. Type a question.",
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				result, err := m.service.Ask(context.Background(), q, 0, m.evaluate)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.result = nil
				} else {
					m.status = fmt.Sprintf("Answered %q", q)
					m.result = result
					m.cursor = 0
					m.input.SetValue("")
				}
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		case "down":
			if m.result != nil && len(m.result.Sources) > 0 {
				m.cursor = (m.cursor + 1) % len(m.result.Sources)
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		case "up":
			if m.result != nil && len(m.result.Sources) > 0 {
				m.cursor = (m.cursor - 1 + len(m.result.Sources)) % len(m.result.Sources)
				m.viewport.SetContent(m.renderResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Knowledge Helper")
	summary := dimStyle.Render(m.summary)
	answer := answerBoxStyle.Render(m.viewport.View())
	input := questionBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No answer yet."
	}

	var b strings.Builder
	b.WriteString(m.result.Answer)
	b.WriteString("\n\n")

	confidence := fmt.Sprintf("confidence %.2f", m.result.Confidence)
	if m.result.Degraded {
		confidence += " " + degradedStyle.Render("(degraded)")
	}
	b.WriteString(dimStyle.Render(confidence))

	if m.result.Evaluation != nil {
		e := m.result.Evaluation
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"relevance %.2f · coverage %.2f · quality %.2f", e.Relevance, e.Coverage, e.Quality)))
	}

	if len(m.result.Sources) > 0 {
		src := m.result.Sources[m.cursor]
		b.WriteString("\n\n")
		b.WriteString(sourceTitleStyle.Render(fmt.Sprintf(
			"Source %d/%d  (document %s)", m.cursor+1, len(m.result.Sources), src.DocumentID)))
		b.WriteString("\n")
		b.WriteString(src.Content)
	}
	return b.String()
}

var (
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	degradedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sourceTitleStyle = lipgloss.NewStyle().Bold(true)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
