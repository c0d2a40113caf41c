// Package knowledgepack holds the built-in, precomputed chunk set that is
// loaded once at startup and shared read-only across requests.
package knowledgepack

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"labrag/internal/domain"
)

// Pack is the on-disk form: every chunk carries its embedding.
type Pack struct {
	Chunks    []domain.Chunk
	ModelInfo string // embedder that produced the vectors, e.g. "openai-text-embedding-3-small"
	Dimension int
	BuiltAt   time.Time
}

// Repository is an immutable view of a loaded pack.
type Repository struct {
	pack Pack
}

// New wraps an in-memory pack. Chunks without an embedding are dropped.
func New(p Pack) (*Repository, error) {
	chunks := make([]domain.Chunk, 0, len(p.Chunks))
	for _, ch := range p.Chunks {
		if !ch.Embedded() {
			continue
		}
		if p.Dimension == 0 {
			p.Dimension = len(ch.Embedding)
		}
		if len(ch.Embedding) != p.Dimension {
			return nil, fmt.Errorf("chunk %s has dimension %d, pack declares %d: %w", ch.ID, len(ch.Embedding), p.Dimension, domain.ErrInvalidInput)
		}
		chunks = append(chunks, ch)
	}
	p.Chunks = chunks
	return &Repository{pack: p}, nil
}

// Load decodes a gob-encoded pack.
func Load(r io.Reader) (*Repository, error) {
	var p Pack
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode knowledge pack: %w", err)
	}
	return New(p)
}

// LoadFile reads a pack from disk. A missing file is reported as
// domain.ErrPackUnavailable.
func LoadFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrPackUnavailable)
		}
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Chunks returns a copy of the pack's chunks in build order.
func (r *Repository) Chunks() []domain.Chunk {
	return slices.Clone(r.pack.Chunks)
}

func (r *Repository) Len() int { return len(r.pack.Chunks) }

func (r *Repository) ModelInfo() string { return r.pack.ModelInfo }

func (r *Repository) Dimension() int { return r.pack.Dimension }

func (r *Repository) BuiltAt() time.Time { return r.pack.BuiltAt }

// Compatible reports whether query vectors from the named embedder can be
// compared with this pack.
func (r *Repository) Compatible(modelInfo string, dimension int) bool {
	if r.pack.ModelInfo != "" && r.pack.ModelInfo != modelInfo {
		return false
	}
	return dimension == 0 || r.pack.Dimension == 0 || dimension == r.pack.Dimension
}

// Write gob-encodes p. Chunks without embeddings are dropped first.
func Write(w io.Writer, p Pack) error {
	repo, err := New(p)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(repo.pack); err != nil {
		return fmt.Errorf("encode knowledge pack: %w", err)
	}
	return nil
}

// WriteFile writes p next to path and renames it into place, so readers
// never observe a partial pack.
func WriteFile(path string, p Pack) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(f, p); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
