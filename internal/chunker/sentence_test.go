package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvrag/internal/domain"
)

func TestSentenceSplitterGroupsSentences(t *testing.T) {
	s := NewSentenceSplitter(2, 0)
	rec := domain.Record{
		Index: 0,
		Text:  "One. Two. Three. Four.",
		Meta:  domain.Metadata{"k": "v"},
	}
	chunks, err := s.Split(rec)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Three. Four.", chunks[1].Text)
	assert.Equal(t, domain.Metadata{"k": "v"}, chunks[1].Meta)
}

func TestSentenceSplitterOverlap(t *testing.T) {
	s := NewSentenceSplitter(2, 1)
	chunks, err := s.Split(domain.Record{Index: 0, Text: "One. Two. Three."})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Two. Three.", chunks[1].Text)
}

func TestSentenceSplitterOverlapClamped(t *testing.T) {
	// overlap >= window would stop the window from advancing; the
	// constructor clamps it so Split always terminates
	s := NewSentenceSplitter(2, 2)
	chunks, err := s.Split(domain.Record{Index: 0, Text: "One. Two. Three. Four."})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Two. Three.", chunks[1].Text)
	assert.Equal(t, "Three. Four.", chunks[2].Text)
}

func TestSentenceSplitterNoTerminators(t *testing.T) {
	s := NewSentenceSplitter(3, 0)
	chunks, err := s.Split(domain.Record{Index: 0, Text: "no punctuation at all"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "no punctuation at all", chunks[0].Text)
}
