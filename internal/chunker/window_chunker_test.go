package chunker

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\n\n b\t\tc  "))
	assert.Equal(t, "", Normalize(" \n\t "))
}

func TestSplit_ShortTextIsOneWindow(t *testing.T) {
	c := NewWindowChunker(50, 10)

	windows := c.Split("We used X.\n")

	require.Len(t, windows, 1)
	assert.Equal(t, Window{Text: "We used X.", Start: 0, End: 10}, windows[0])
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Empty(t, NewWindowChunker(50, 10).Split("   \n  "))
}

func TestSplit_Count(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		window  int
		overlap int
		want    int
	}{
		{"exact window", 10, 10, 2, 1},
		{"one step past", 11, 10, 2, 2},
		{"two full steps", 26, 10, 2, 3},
		{"no overlap", 30, 10, 0, 3},
		{"long default", 2500, 1000, 200, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.length)

			windows := NewWindowChunker(tt.window, tt.overlap).Split(text)

			assert.Len(t, windows, tt.want)
			expected := (tt.length - tt.overlap + (tt.window - tt.overlap) - 1) / (tt.window - tt.overlap)
			assert.Equal(t, expected, len(windows))
		})
	}
}

func TestSplit_CoverageAndOverlap(t *testing.T) {
	text := strings.Repeat("soil moisture held steady across all plots ", 40)
	normalized := []rune(Normalize(text))
	c := NewWindowChunker(120, 30)

	windows := c.Split(text)

	require.NotEmpty(t, windows)
	assert.Equal(t, 0, windows[0].Start)
	assert.Equal(t, len(normalized), windows[len(windows)-1].End)
	for i, w := range windows {
		assert.LessOrEqual(t, len([]rune(w.Text)), 120)
		assert.Equal(t, string(normalized[w.Start:w.End]), w.Text)
		if i == 0 {
			continue
		}
		prev := windows[i-1]
		assert.Greater(t, w.Start, prev.Start)
		assert.LessOrEqual(t, w.Start, prev.End, "gap between windows %d and %d", i-1, i)
		assert.Equal(t, 30, prev.End-w.Start)
	}
}

func TestSplit_OverlapNotSmallerThanWindowStillProgresses(t *testing.T) {
	windows := NewWindowChunker(4, 10).Split("abcdef")

	require.Len(t, windows, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{windows[0].Start, windows[1].Start, windows[2].Start})
	assert.Equal(t, "cdef", windows[2].Text)
}

func TestSplit_CountsRunes(t *testing.T) {
	windows := NewWindowChunker(3, 0).Split("ñññññ")

	require.Len(t, windows, 2)
	assert.Equal(t, "ñññ", windows[0].Text)
	assert.Equal(t, "ññ", windows[1].Text)
}

func TestNewWindowChunker_Defaults(t *testing.T) {
	c := NewWindowChunker(0, -5)

	assert.Equal(t, DefaultMaxChunkSize, c.maxChunkSize)
	assert.Equal(t, 0, c.overlap)
}

func TestChunk_AssignsDocumentFields(t *testing.T) {
	uploaded := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := domain.Document{ID: "trial-7", Label: "trial7.pdf", UploadedAt: uploaded}
	sections := []domain.Section{
		{Label: domain.LabelMethodology, Text: "We used X.\n"},
		{Label: domain.LabelUnknown, Text: "   "},
		{Label: domain.LabelPerformance, Text: "Yield was 12%."},
	}

	chunks := NewWindowChunker(50, 10).Chunk(doc, sections)

	require.Len(t, chunks, 2)
	assert.Equal(t, "trial-7:0", chunks[0].ID)
	assert.Equal(t, domain.LabelMethodology, chunks[0].Section)
	assert.Equal(t, "trial-7:1", chunks[1].ID)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, domain.LabelPerformance, chunks[1].Section)
	assert.Equal(t, "Yield was 12%.", chunks[1].Text)
	for _, ch := range chunks {
		assert.Equal(t, "trial-7", ch.DocumentID)
		assert.Equal(t, "trial7.pdf", ch.DocumentLabel)
		assert.Equal(t, uploaded, ch.DocumentUploadedAt)
		assert.False(t, ch.Embedded())
	}
}
