package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvrag/internal/domain"
)

func testChunks() ([]domain.Chunk, [][]float64) {
	chunks := []domain.Chunk{
		{ID: "0:0", RecordIndex: 0, Text: "alpha", Meta: domain.Metadata{"date": "2024-01-01"}},
		{ID: "1:0", RecordIndex: 1, Text: "beta", Meta: domain.Metadata{"date": "2024-01-02"}},
	}
	vectors := [][]float64{{1, 0}, {0, 1}}
	return chunks, vectors
}

func TestBoltRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "store.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(chunks, vectors))

	res, err := s.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "0:0", res[0].Chunk.ID)
	assert.Equal(t, "2024-01-01", res[0].Chunk.Meta["date"])
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(chunks, vectors))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := s.Search([]float64{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "1:0", res[0].Chunk.ID)
}

func TestBoltDimensionMismatchOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	err = s.Init(3)
	require.Error(t, err)
	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestBoltClearResetsDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(chunks, vectors))
	require.NoError(t, s.Clear())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	// a cleared store accepts a different dimension
	assert.NoError(t, s.Init(5))
}
