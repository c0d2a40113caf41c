package vectorstore

import "labrag/internal/domain"

// Storage keeps the per-session chunk sets retrieval runs against.
// Chunks are returned in insertion order, which is the ranking tie-break.
type Storage interface {
	// Put stores a document's chunks, replacing any earlier upload of it.
	Put(session, documentID string, chunks []domain.Chunk) error
	Chunks(session string) ([]domain.Chunk, error)
	Documents(session string) ([]string, error)
	DeleteDocument(session, documentID string) error
	// Clear discards the whole document context of a session.
	Clear(session string) error
}
