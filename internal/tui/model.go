// Package tui is a terminal evidence browser over a retrieval session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labrag/internal/domain"
	"labrag/internal/intent"
)

// Retriever is the TUI-facing subset of the retrieval service.
type Retriever interface {
	RetrieveSession(ctx context.Context, session, query string, topK int, includePack bool) ([]domain.ScoredChunk, error)
}

// Highlighter picks the sentence of a chunk that best answers the query.
type Highlighter interface {
	BestSentence(text, query string) string
}

// Model is the Bubble Tea model for the evidence browser.
type Model struct {
	retriever   Retriever
	highlighter Highlighter
	session     string
	topK        int
	includePack bool

	input     textinput.Model
	viewport  viewport.Model
	results   []domain.ScoredChunk
	intents   []domain.Label
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates the browser for one session. summary is shown under the header.
func New(retriever Retriever, highlighter Highlighter, session string, topK int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the reports and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		retriever:   retriever,
		highlighter: highlighter,
		session:     session,
		topK:        topK,
		input:       ti,
		viewport:    vp,
		summary:     summary,
		status:      "Loaded. Type to search, ctrl+p toggles the knowledge pack.",
	}
}

// WithPack returns the model with the knowledge pack included in results.
func (m Model) WithPack() Model {
	m.includePack = true
	return m
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
		reserved := 3 + 1 + qh + 1 // header, summary and intents; status; spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.search(q)
				return m, nil
			}
		case "ctrl+p":
			m.includePack = !m.includePack
			if m.includePack {
				m.status = "Knowledge pack included."
			} else {
				m.status = "Session documents only."
			}
			if m.lastQuery != "" {
				m.search(m.lastQuery)
			}
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) search(q string) {
	res, err := m.retriever.RetrieveSession(context.Background(), m.session, q, m.topK, m.includePack)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
	} else {
		m.status = fmt.Sprintf("%d results for %q", len(res), q)
		m.results = res
		m.intents = intent.Classify(q)
		m.lastQuery = q
	}
	m.cursor = 0
	m.viewport.SetContent(m.renderResults())
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Lab Report Evidence")
	summary := dimStyle.Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + m.renderIntents() + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderIntents() string {
	if len(m.intents) == 0 {
		return dimStyle.Render("intents: -")
	}
	titles := make([]string, len(m.intents))
	for i, l := range m.intents {
		titles[i] = l.Title()
	}
	return dimStyle.Render("intents: " + strings.Join(titles, ", "))
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		if m.lastQuery != "" {
			return "No evidence matched."
		}
		return "No results yet."
	}
	var b strings.Builder
	for i, r := range m.results {
		line := fmt.Sprintf("%d. %-22s %-24s %.3f", r.Rank, r.Chunk.Section.Title(), r.Chunk.DocumentLabel, r.Score)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.highlight(m.results[m.cursor].Chunk.Text))
	return b.String()
}

func (m Model) highlight(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	best := m.highlighter.BestSentence(text, m.lastQuery)
	if best == "" {
		return text
	}
	return strings.Replace(text, best, highlightStyle.Render(best), 1)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
