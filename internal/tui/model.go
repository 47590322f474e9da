package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
)

// Asker is the TUI-facing subset of the question answering pipeline.
type Asker interface {
	Ask(ctx context.Context, sessionID, question string, k int) (domain.Answer, error)
}

const sessionID = "tui"

// Model is the Bubble Tea model for the interactive chat.
type Model struct {
	asker      Asker
	input      textinput.Model
	viewport   viewport.Model
	transcript []exchange
	status     string
	thinking   bool
	ready      bool
}

type exchange struct {
	question string
	answer   domain.Answer
}

type answerMsg struct {
	question string
	answer   domain.Answer
	err      error
}

// New creates the chat model. summary describes the loaded corpus and is
// shown in the status line until the first question.
func New(asker Asker, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{asker: asker, input: ti, viewport: vp, status: summary}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, spacer, input frame, status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.thinking = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("%d citations", len(msg.answer.Citations))
			m.transcript = append(m.transcript, exchange{question: msg.question, answer: msg.answer})
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.thinking {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.thinking = true
			m.status = "Thinking..."
			return m, m.ask(q)
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.asker.Ask(context.Background(), sessionID, question, 0)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docqa chat")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No questions yet. The answer will cite the passages it used."
	}
	var b strings.Builder
	for i, ex := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("Q: " + ex.question))
		b.WriteString("\n")
		b.WriteString(ex.answer.Text)
		if len(ex.answer.Citations) > 0 {
			b.WriteString("\n")
			for j, c := range ex.answer.Citations {
				b.WriteString(citationStyle.Render(
					fmt.Sprintf("  [%d] %s (score %.3f)", j+1, c.DocName, c.Score)))
				if j < len(ex.answer.Citations)-1 {
					b.WriteString("\n")
				}
			}
		}
	}
	return b.String()
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	citationStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
