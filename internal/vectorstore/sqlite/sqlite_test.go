package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvrag/internal/domain"
)

func openTestStore(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Init(2))

	chunks := []domain.Chunk{
		{ID: "0:0", RecordIndex: 0, Index: 0, Text: "alpha", Meta: domain.Metadata{"date": "2024-01-01"}},
		{ID: "1:0", RecordIndex: 1, Index: 0, Text: "beta", Meta: domain.Metadata{"date": "2024-01-02"}},
	}
	require.NoError(t, s.Upsert(chunks, [][]float64{{1, 0}, {0, 1}}))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	res, err := s.Search([]float64{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "1:0", res[0].Chunk.ID)
	assert.Equal(t, "beta", res[0].Chunk.Text)
	assert.Equal(t, "2024-01-02", res[0].Chunk.Meta["date"])
}

func TestSQLiteDimensionGuard(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Init(4))
	err := s.Init(8)
	require.Error(t, err)
	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestSQLiteClear(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{{ID: "0:0", Meta: domain.Metadata{}}},
		[][]float64{{1, 0}},
	))
	require.NoError(t, s.Clear())
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	// a cleared store accepts a different dimension
	assert.NoError(t, s.Init(7))
}
