package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"csvrag/internal/domain"
)

// SentenceSplitter groups whole sentences into chunks with sentence
// overlap. An alternative to the recursive splitter for prose-heavy
// columns.
type SentenceSplitter struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceSplitter(sentencesPerChunk, overlapSentences int) *SentenceSplitter {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	// the window must advance by at least one sentence per chunk
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceSplitter{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

func (s *SentenceSplitter) Split(rec domain.Record) ([]domain.Chunk, error) {
	sentences := s.splitter.FindAllString(rec.Text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(rec.Text)
		if trimmed == "" {
			return nil, nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	var chunks []domain.Chunk
	i := 0
	idx := 0
	for i < len(sentences) {
		end := i + s.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, domain.Chunk{
			ID:          strconv.Itoa(rec.Index) + ":" + strconv.Itoa(idx),
			RecordIndex: rec.Index,
			Index:       idx,
			Text:        strings.Join(sentences[i:end], " "),
			Meta:        rec.Meta.Clone(),
		})
		if end == len(sentences) {
			break
		}
		i = end - s.overlapSentences
		if i < 0 {
			i = 0
		}
		idx++
	}
	return chunks, nil
}
