// Package tui is the interactive search loop behind `ghostkube search`.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xxxsen/ghostkube/internal/model"
)

const exitCommand = "exit"

type Searcher interface {
	Search(ctx context.Context, q model.Query) model.SearchResponse
}

type searchDoneMsg struct {
	resp model.SearchResponse
}

type Model struct {
	ctx      context.Context
	searcher Searcher
	topK     int
	summary  string

	input    textinput.Model
	viewport viewport.Model
	results  []model.SearchResult
	query    string
	status   string
	cursor   int
	busy     bool
	ready    bool
}

func New(ctx context.Context, searcher Searcher, topK int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask the notes, or type exit"
	ti.Focus()
	return Model{
		ctx:      ctx,
		searcher: searcher,
		topK:     topK,
		summary:  summary,
		input:    ti,
		viewport: viewport.New(80, 20),
		status:   "Type a query and press Enter.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := frameStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-fh-6)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case searchDoneMsg:
		m.busy = false
		m.results = msg.resp.Results
		m.cursor = 0
		if len(m.results) == 0 {
			m.status = fmt.Sprintf("No matches for %q", msg.resp.Query)
		} else {
			m.status = fmt.Sprintf("%d results for %q  (up/down to browse)", len(m.results), msg.resp.Query)
		}
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if strings.EqualFold(q, exitCommand) {
				return m, tea.Quit
			}
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.query = q
			m.status = "Searching..."
			m.input.SetValue("")
			return m, m.search(q)
		case tea.KeyDown:
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResult())
			}
			return m, nil
		case tea.KeyUp:
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResult())
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		return searchDoneMsg{resp: m.searcher.Search(m.ctx, model.Query{Text: query, TopK: m.topK})}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return titleStyle.Render("GhostKube") + "\n" +
		summaryStyle.Render(m.summary) + "\n" +
		frameStyle.Render(m.viewport.View()) + "\n" +
		m.input.View() + "\n" +
		statusStyle.Render(m.status)
}

func (m Model) renderResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	return FormatResult(m.cursor, len(m.results), m.results[m.cursor])
}

// FormatResult renders one hit as a header line, its source and the preview text.
func FormatResult(i, total int, r model.SearchResult) string {
	header := scoreStyle.Render(fmt.Sprintf("Result %d/%d  relevance=%.4f", i+1, total, r.RelevanceScore))
	source := r.Metadata.GetString("source_ref")
	if source == "" {
		source = "unknown source"
	}
	return header + "\n" + sourceStyle.Render(source) + "\n\n" + r.DisplayText
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	frameStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)
