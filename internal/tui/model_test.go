package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
	"labrag/internal/preview"
)

type fakeRetriever struct {
	results     []domain.ScoredChunk
	err         error
	calls       int
	includePack bool
	topK        int
}

func (f *fakeRetriever) RetrieveSession(_ context.Context, _, _ string, topK int, includePack bool) ([]domain.ScoredChunk, error) {
	f.calls++
	f.topK = topK
	f.includePack = includePack
	return f.results, f.err
}

func fixture() *fakeRetriever {
	return &fakeRetriever{results: []domain.ScoredChunk{
		{Rank: 1, Score: 1.5, Chunk: domain.Chunk{ID: "a:0", Section: domain.LabelITS1Fungal, DocumentLabel: "trial.md", Text: "Plots were sampled weekly. Fungal reads were dominated by Glomus."}},
		{Rank: 2, Score: 0.4, Chunk: domain.Chunk{ID: "a:1", Section: domain.LabelPerformance, DocumentLabel: "trial.md", Text: "Yield was 12 kg per plot."}},
	}}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func query(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModel_LoadingUntilSized(t *testing.T) {
	m := New(fixture(), preview.New(0), "local", 5, "2 documents")
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_Search(t *testing.T) {
	r := fixture()
	m := New(r, preview.New(0), "local", 5, "2 documents")
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = query(t, m, "which fungi dominated")

	assert.Equal(t, 1, r.calls)
	assert.Equal(t, 5, r.topK)
	assert.False(t, r.includePack)
	view := m.View()
	assert.Contains(t, view, "ITS1 Fungal")
	assert.Contains(t, view, "Performance")
	assert.Contains(t, view, "2 results for")
	assert.Equal(t, []domain.Label{domain.LabelITS1Fungal}, m.intents)
}

func TestModel_Navigation(t *testing.T) {
	m := New(fixture(), preview.New(0), "local", 5, "")
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = query(t, m, "yield")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.cursor)
}

func TestModel_TogglePackRerunsQuery(t *testing.T) {
	r := fixture()
	m := New(r, preview.New(0), "local", 5, "")
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = query(t, m, "yield")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})

	assert.True(t, m.includePack)
	assert.Equal(t, 2, r.calls)
	assert.True(t, r.includePack)
}

func TestModel_Error(t *testing.T) {
	r := &fakeRetriever{err: errors.New("boom")}
	m := New(r, preview.New(0), "local", 5, "")
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = query(t, m, "yield")

	assert.Equal(t, "Error: boom", m.status)
	assert.Empty(t, m.results)
}

func TestModel_Highlight(t *testing.T) {
	m := New(fixture(), preview.New(0), "local", 5, "")
	m.lastQuery = "fungal reads"

	got := m.highlight("Plots were   sampled weekly.\nFungal reads were dominated by Glomus.")

	assert.Contains(t, got, "Plots were sampled weekly.")
	assert.Contains(t, got, "Glomus")
}

func TestModel_WithPack(t *testing.T) {
	r := fixture()
	m := New(r, preview.New(0), "local", 3, "").WithPack()
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	query(t, m, "yield")

	assert.True(t, r.includePack)
	assert.Equal(t, 3, r.topK)
}
