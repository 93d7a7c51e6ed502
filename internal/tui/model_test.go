package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/ghostkube/internal/model"
)

type fakeSearcher struct {
	queries []string
	topK    int
	results []model.SearchResult
}

func (f *fakeSearcher) Search(ctx context.Context, q model.Query) model.SearchResponse {
	f.queries = append(f.queries, q.Text)
	f.topK = q.TopK
	return model.SearchResponse{Query: q.Text, Results: f.results}
}

func typeText(t *testing.T, m tea.Model, text string) tea.Model {
	t.Helper()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestExitQuits(t *testing.T) {
	m := tea.Model(New(context.Background(), &fakeSearcher{}, 5, ""))
	m = typeText(t, m, "exit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))

	m = tea.Model(New(context.Background(), &fakeSearcher{}, 5, ""))
	m = typeText(t, m, "  EXIT ")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))

	_, cmd = New(context.Background(), &fakeSearcher{}, 5, "").Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
}

func TestEnterRunsSearch(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{DisplayText: "helm values live in charts/", RelevanceScore: 0.91, Metadata: model.FlatMap{"source_ref": model.StringValue("infra/README.md")}},
		{DisplayText: "kubectl rollout restart", RelevanceScore: 0.42},
	}}
	m := tea.Model(New(context.Background(), searcher, 3, "2 documents indexed"))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = typeText(t, m, "how do I restart")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.(Model).busy)
	require.Empty(t, m.(Model).input.Value())

	m, _ = m.Update(cmd())
	require.Equal(t, []string{"how do I restart"}, searcher.queries)
	require.Equal(t, 3, searcher.topK)

	got := m.(Model)
	require.False(t, got.busy)
	require.Len(t, got.results, 2)
	view := got.View()
	assert.Contains(t, view, "infra/README.md")
	assert.Contains(t, view, "2 documents indexed")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.(Model).cursor)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.(Model).cursor)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.(Model).cursor)
}

func TestEmptyQueryIsIgnored(t *testing.T) {
	searcher := &fakeSearcher{}
	m := tea.Model(New(context.Background(), searcher, 5, ""))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, searcher.queries)
}

func TestNoMatchesStatus(t *testing.T) {
	m := tea.Model(New(context.Background(), &fakeSearcher{}, 5, ""))
	m, _ = m.Update(searchDoneMsg{resp: model.EmptySearch("nothing")})
	assert.True(t, strings.HasPrefix(m.(Model).status, "No matches"))
	assert.Equal(t, "Loading...", m.View())
}

func TestFormatResult(t *testing.T) {
	out := FormatResult(0, 1, model.SearchResult{DisplayText: "body", RelevanceScore: 0.5})
	assert.Contains(t, out, "Result 1/1")
	assert.Contains(t, out, "unknown source")
	assert.True(t, strings.HasSuffix(out, "body"))
}
