package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// FrequencySummarizer is an extractive summarizer that ranks sentences
// by normalized token frequency (stopwords filtered). It selects the
// highest-scoring sentences until the word budget is met, then emits
// them in their original order.
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	sentenceRe   *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentenceRe:   regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:    defaultStopwords(),
	}
}

// Summarize works at sentence granularity: it keeps adding the
// best-ranked sentences while below minWords and stops before a
// sentence that would push past maxWords (once the minimum is met).
func (s *FrequencySummarizer) Summarize(text string, minWords, maxWords int) (string, error) {
	if minWords < 0 {
		minWords = 0
	}
	if maxWords <= 0 {
		maxWords = 120
	}
	sentences := s.sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
		words int
	}
	ranked := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if len(toks) > 0 {
			// length normalization so long sentences don't dominate
			score /= math.Sqrt(float64(len(toks)))
		}
		ranked[i] = scored{idx: i, score: score, words: len(strings.Fields(sent))}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var selected []int
	words := 0
	for _, r := range ranked {
		if words >= minWords && words+r.words > maxWords {
			continue
		}
		selected = append(selected, r.idx)
		words += r.words
		if words >= maxWords {
			break
		}
	}
	if len(selected) == 0 {
		selected = []int{ranked[0].idx}
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
