package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "Go makes concurrent programming simple. Goroutines are cheap compared to threads. " +
	"Channels carry values between goroutines. The scheduler multiplexes goroutines onto threads. " +
	"Garbage collection pauses are short. Many servers handle thousands of connections this way."

func TestSummarizeNonEmpty(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize(sample, 5, 40)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestSummarizeRespectsMaxWords(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize(sample, 0, 15)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(strings.Fields(out)), 15)
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize(sample, 0, 100)
	require.NoError(t, err)
	// with a generous budget every sentence is kept, in source order
	first := strings.Index(out, "Goroutines are cheap")
	second := strings.Index(out, "Channels carry values")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestSummarizeNoSentenceTerminators(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("just a fragment with no terminator", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, "just a fragment with no terminator", out)
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
