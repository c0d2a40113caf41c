package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
	"labrag/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

func chunks(doc string, n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{ID: doc + ":" + string(rune('0'+i)), DocumentID: doc, Embedding: []float64{1, float64(i)}}
	}
	return out
}

func chunkIDs(cs []domain.Chunk) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestPutAndChunksKeepInsertionOrder(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "b", chunks("b", 2)))
	require.NoError(t, s.Put("s1", "a", chunks("a", 1)))

	got, err := s.Chunks("s1")

	require.NoError(t, err)
	assert.Equal(t, []string{"b:0", "b:1", "a:0"}, chunkIDs(got))
	docs, err := s.Documents("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, docs)
}

func TestPutReplacesReupload(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "a", chunks("a", 3)))
	require.NoError(t, s.Put("s1", "b", chunks("b", 1)))
	require.NoError(t, s.Put("s1", "a", chunks("a", 1)))

	got, err := s.Chunks("s1")

	require.NoError(t, err)
	assert.Equal(t, []string{"b:0", "a:0"}, chunkIDs(got))
}

func TestPutRejectsDimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "a", chunks("a", 1)))

	bad := []domain.Chunk{{ID: "c:0", Embedding: []float64{1, 2, 3}}}
	err := s.Put("s1", "c", bad)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	got, _ := s.Chunks("s1")
	assert.Equal(t, []string{"a:0"}, chunkIDs(got))
}

func TestPutAcceptsUnembeddedChunks(t *testing.T) {
	s := NewStorage()
	mixed := []domain.Chunk{{ID: "a:0"}, {ID: "a:1", Embedding: []float64{0.5}}}

	require.NoError(t, s.Put("s1", "a", mixed))
	got, _ := s.Chunks("s1")
	assert.Len(t, got, 2)
}

func TestPutValidatesIDs(t *testing.T) {
	assert.ErrorIs(t, NewStorage().Put("", "a", nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, NewStorage().Put("s1", "", nil), domain.ErrInvalidInput)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "a", chunks("a", 1)))
	require.NoError(t, s.Put("s2", "b", []domain.Chunk{{ID: "b:0", Embedding: []float64{1, 2, 3}}}))

	got, _ := s.Chunks("s2")
	assert.Equal(t, []string{"b:0"}, chunkIDs(got))
}

func TestDeleteDocument(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "a", chunks("a", 1)))
	require.NoError(t, s.Put("s1", "b", chunks("b", 1)))

	require.NoError(t, s.DeleteDocument("s1", "a"))
	got, _ := s.Chunks("s1")
	assert.Equal(t, []string{"b:0"}, chunkIDs(got))

	assert.ErrorIs(t, s.DeleteDocument("s1", "a"), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDocument("nope", "a"), domain.ErrNotFound)
}

func TestClear(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "a", chunks("a", 2)))

	require.NoError(t, s.Clear("s1"))
	require.NoError(t, s.Clear("never-existed"))

	got, err := s.Chunks("s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunksReturnsCopy(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Put("s1", "a", chunks("a", 1)))

	got, _ := s.Chunks("s1")
	got[0].ID = "mutated"

	again, _ := s.Chunks("s1")
	assert.Equal(t, "a:0", again[0].ID)
}
