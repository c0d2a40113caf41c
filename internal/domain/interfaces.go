package domain

// Chunker splits the sections of one document into retrievable windows.
type Chunker interface {
	Chunk(doc Document, sections []Section) []Chunk
}
