package memory

import (
	"fmt"
	"slices"
	"sync"

	"labrag/internal/domain"
)

type document struct {
	id     string
	chunks []domain.Chunk
}

type session struct {
	dimension int
	documents []document
}

// Storage is an in-memory session store. Each session holds documents in
// upload order and fixes its embedding dimension on the first embedded chunk.
type Storage struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewStorage() *Storage { return &Storage{sessions: make(map[string]*session)} }

func (s *Storage) Put(sessionID, documentID string, chunks []domain.Chunk) error {
	if sessionID == "" || documentID == "" {
		return fmt.Errorf("session and document ids are required: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	kept := slices.DeleteFunc(slices.Clone(sess.documents), func(d document) bool { return d.id == documentID })
	dimension := sess.dimension
	if len(kept) == 0 {
		dimension = 0
	}
	for _, ch := range chunks {
		if !ch.Embedded() {
			continue
		}
		if dimension == 0 {
			dimension = len(ch.Embedding)
		}
		if len(ch.Embedding) != dimension {
			return fmt.Errorf("chunk %s: vector dimension %d, session uses %d: %w", ch.ID, len(ch.Embedding), dimension, domain.ErrInvalidInput)
		}
	}
	sess.dimension = dimension
	sess.documents = append(kept, document{id: documentID, chunks: slices.Clone(chunks)})
	return nil
}

func (s *Storage) Chunks(sessionID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	var out []domain.Chunk
	for _, d := range sess.documents {
		out = append(out, d.chunks...)
	}
	return out, nil
}

func (s *Storage) Documents(sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	ids := make([]string, len(sess.documents))
	for i, d := range sess.documents {
		ids[i] = d.id
	}
	return ids, nil
}

func (s *Storage) DeleteDocument(sessionID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	before := len(sess.documents)
	sess.documents = slices.DeleteFunc(sess.documents, func(d document) bool { return d.id == documentID })
	if len(sess.documents) == before {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	if len(sess.documents) == 0 {
		delete(s.sessions, sessionID)
	}
	return nil
}

func (s *Storage) Clear(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
