package chunker

import (
	"strconv"
	"strings"

	"labrag/internal/domain"
)

const (
	DefaultMaxChunkSize = 1000
	DefaultOverlap      = 200
)

// Window is one span of normalized section text, offsets counted in runes.
type Window struct {
	Text  string
	Start int
	End   int
}

// WindowChunker splits section text into fixed-size overlapping windows.
type WindowChunker struct {
	maxChunkSize int
	overlap      int
}

func NewWindowChunker(maxChunkSize, overlap int) *WindowChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &WindowChunker{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
	}
}

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split windows the normalized text. The cursor advances by
// maxChunkSize-overlap, and by at least one rune when overlap swallows the window.
func (c *WindowChunker) Split(text string) []Window {
	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return nil
	}
	step := c.maxChunkSize - c.overlap
	if step < 1 {
		step = 1
	}

	var windows []Window
	for start := 0; ; start += step {
		end := start + c.maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			windows = append(windows, Window{Text: string(runes[start:end]), Start: start, End: end})
		}
		if end == len(runes) {
			break
		}
	}
	return windows
}

// Chunk turns every section of doc into chunks. Indexes run across the
// whole document so IDs of the form {doc}:{index} stay unique.
func (c *WindowChunker) Chunk(doc domain.Document, sections []domain.Section) []domain.Chunk {
	var chunks []domain.Chunk
	for _, section := range sections {
		for _, w := range c.Split(section.Text) {
			idx := len(chunks)
			chunks = append(chunks, domain.Chunk{
				ID:                 doc.ID + ":" + strconv.Itoa(idx),
				DocumentID:         doc.ID,
				DocumentLabel:      doc.Label,
				DocumentUploadedAt: doc.UploadedAt,
				Section:            section.Label,
				Index:              idx,
				Text:               w.Text,
				Start:              w.Start,
				End:                w.End,
			})
		}
	}
	return chunks
}
