package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"csvrag/internal/domain"
)

// QueryPort is the TUI-facing subset of the pipeline.
type QueryPort interface {
	Query(query string, topK int) (*domain.Answer, error)
}

// Model is the Bubble Tea model for the interactive query UI.
type Model struct {
	service   QueryPort
	input     textinput.Model
	viewport  viewport.Model
	answer    *domain.Answer
	status    string
	cursor    int
	ready     bool
	topK      int
	lastQuery string
}

// New creates a new TUI model instance.
func New(service QueryPort, topK int) Model {
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
		topK:     topK,
		status:   "Index built. Type a question.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + query box + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				ans, err := m.service.Query(q, m.topK)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = nil
				} else {
					m.status = fmt.Sprintf("Answer for %q", q)
					m.answer = ans
					m.cursor = 0
					m.lastQuery = q
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			if m.answer != nil && len(m.answer.Results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Results)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Results)) % len(m.answer.Results)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("csvrag")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(summaryStyle.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(m.answer.Summary)
	b.WriteString("\n\n")
	r := m.answer.Results[m.cursor]
	b.WriteString(fmt.Sprintf("Source %d/%d  score=%.3f\n", m.cursor+1, len(m.answer.Results), r.Score))
	b.WriteString(renderMeta(r.Chunk.Meta))
	b.WriteString("\n")
	b.WriteString(r.Chunk.Text)
	return b.String()
}

func renderMeta(meta domain.Metadata) string {
	if len(meta) == 0 {
		return metaStyle.Render("(no metadata)")
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + meta[k]
	}
	return metaStyle.Render(strings.Join(parts, "  "))
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
