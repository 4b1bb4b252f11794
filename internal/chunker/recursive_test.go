package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvrag/internal/domain"
)

func TestRecursiveShortTextSingleChunk(t *testing.T) {
	s := NewRecursiveSplitter(100, 20)
	rec := domain.Record{Index: 0, Text: "short text, well under the limit.", Meta: domain.Metadata{"k": "v"}}

	chunks, err := s.Split(rec)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, rec.Text, chunks[0].Text)
	assert.Equal(t, "0:0", chunks[0].ID)
}

func TestRecursiveRespectsSizeBound(t *testing.T) {
	s := NewRecursiveSplitter(50, 10)
	text := strings.Repeat("one sentence here. ", 30)
	chunks, err := s.Split(domain.Record{Index: 2, Text: text})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 50, "chunk %q exceeds limit", c.Text)
		assert.Equal(t, 2, c.RecordIndex)
	}
	// ordinals are dense and ordered
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestRecursiveIdempotent(t *testing.T) {
	s := NewRecursiveSplitter(60, 15)
	text := "First paragraph with some words.\n\nSecond paragraph, a bit longer than the first one. It has two sentences."
	a, err := s.Split(domain.Record{Index: 0, Text: text})
	require.NoError(t, err)
	b, err := s.Split(domain.Record{Index: 0, Text: text})
	require.NoError(t, err)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
	}
}

func TestRecursiveOverlapCarried(t *testing.T) {
	s := NewRecursiveSplitter(40, 10)
	text := strings.Repeat("alpha beta gamma delta. ", 10)
	chunks, err := s.Split(domain.Record{Index: 0, Text: text})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-min(10, len(prev)):])
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail) || len(prev) < 10,
			"chunk %d should start with the previous chunk's tail", i)
	}
}

func TestRecursiveFallsBackToRuneCut(t *testing.T) {
	s := NewRecursiveSplitter(10, 0)
	// no separator of any kind
	text := strings.Repeat("x", 35)
	chunks, err := s.Split(domain.Record{Index: 0, Text: text})
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	assert.Equal(t, text, joinTexts(chunks))
}

func TestRecursiveEmptyText(t *testing.T) {
	s := NewRecursiveSplitter(100, 10)
	chunks, err := s.Split(domain.Record{Index: 0, Text: "   "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRecursiveMetadataCopied(t *testing.T) {
	s := NewRecursiveSplitter(30, 5)
	meta := domain.Metadata{"date": "2024-06-01", "source": "feed"}
	text := strings.Repeat("words in a row here. ", 8)
	chunks, err := s.Split(domain.Record{Index: 1, Text: text, Meta: meta})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.Equal(t, meta, c.Meta)
	}
	// copies, not shared maps
	chunks[0].Meta["date"] = "mutated"
	assert.Equal(t, "2024-06-01", meta["date"])
	assert.Equal(t, "2024-06-01", chunks[1].Meta["date"])
}

func joinTexts(chunks []domain.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}
