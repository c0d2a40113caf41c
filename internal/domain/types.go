package domain

import "time"

// Format tells the ingestion pipeline how a document's text was produced.
type Format string

const (
	FormatText       Format = "text"
	FormatMarkdown   Format = "markdown"
	FormatStructured Format = "structured" // layout-extracted text, e.g. from a PDF
)

// Document is an uploaded or built-in text asset.
type Document struct {
	ID         string
	Label      string
	Content    string
	Format     Format
	UploadedAt time.Time // zero when unknown
}

// BlockKind enumerates the structural block types produced by the parser.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockTable     BlockKind = "table"
	BlockTableRaw  BlockKind = "table_raw"
	BlockFigure    BlockKind = "figure"
)

// Block is one structural unit of a parsed document.
type Block struct {
	Kind  BlockKind
	Level int        // headings only, 1-3
	Text  string     // heading text, paragraph text or figure caption
	Rows  [][]string // parsed table rows, first row is the header
	Lines []string   // raw table lines when rows could not be parsed
}

// Section is a contiguous run of document lines carrying one label.
type Section struct {
	Label   Label
	Heading string // heading text that opened the section, empty for leading text
	Text    string
}

// Chunk is the atomic retrievable unit.
type Chunk struct {
	ID                 string
	DocumentID         string
	DocumentLabel      string
	DocumentUploadedAt time.Time
	Section            Label
	Index              int
	Text               string
	Start              int // rune offset into the normalized section text
	End                int
	Embedding          []float64
}

// Embedded reports whether the chunk carries a usable embedding.
func (c Chunk) Embedded() bool { return len(c.Embedding) > 0 }

// ScoredChunk is a chunk annotated with the scores computed for one query.
type ScoredChunk struct {
	Chunk         Chunk
	Rank          int
	Similarity    float64
	Normalized    float64
	SectionWeight float64
	RecencyWeight float64
	Score         float64
}

// Evidence is the caller-facing view of a ranked chunk.
type Evidence struct {
	ID            string         `json:"id"`
	Rank          int            `json:"rank"`
	Section       Label          `json:"section"`
	SectionTitle  string         `json:"section_title"`
	Preview       string         `json:"preview"`
	Score         float64        `json:"score"`
	DocumentLabel string         `json:"document_label"`
	Debug         *EvidenceDebug `json:"debug,omitempty"`
}

// EvidenceDebug carries the intermediate weights; privileged callers only.
type EvidenceDebug struct {
	NormalizedSimilarity float64 `json:"normalized_similarity"`
	SectionWeight        float64 `json:"section_weight"`
	RecencyWeight        float64 `json:"recency_weight"`
}
