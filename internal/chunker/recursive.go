package chunker

import (
	"strconv"
	"strings"

	"csvrag/internal/domain"
)

// defaultSeparators is the boundary priority: paragraph break, line
// break, sentence terminators, comma, space, then raw rune boundary.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " ", ""}

// RecursiveSplitter splits text into chunks of at most maxChunkSize
// runes with overlap runes of trailing context carried into the next
// chunk. It is a greedy heuristic: pieces are produced at the highest
// boundary level available, oversized pieces are re-split at the next
// level, and adjacent pieces are packed into windows up to the limit.
type RecursiveSplitter struct {
	maxChunkSize int
	overlap      int
	separators   []string
}

func NewRecursiveSplitter(maxChunkSize, overlap int) *RecursiveSplitter {
	if maxChunkSize <= 0 {
		maxChunkSize = 400
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 2
	}
	return &RecursiveSplitter{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
		separators:   defaultSeparators,
	}
}

// Split produces the record's chunks in order. Text within the size
// limit yields exactly one chunk equal to the input.
func (s *RecursiveSplitter) Split(rec domain.Record) ([]domain.Chunk, error) {
	if strings.TrimSpace(rec.Text) == "" {
		return nil, nil
	}
	pieces := s.splitText(rec.Text, s.separators)
	texts := s.pack(pieces)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:          strconv.Itoa(rec.Index) + ":" + strconv.Itoa(i),
			RecordIndex: rec.Index,
			Index:       i,
			Text:        text,
			Meta:        rec.Meta.Clone(),
		})
	}
	return chunks, nil
}

// splitText breaks text into pieces no longer than maxChunkSize runes,
// trying each separator level in turn. Separators stay attached to the
// preceding piece so concatenation reproduces the input.
func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	if runeLen(text) <= s.maxChunkSize {
		return []string{text}
	}
	sep := separators[0]
	rest := separators[1:]
	if sep == "" {
		return cutRunes(text, s.maxChunkSize)
	}
	parts := splitAfter(text, sep)
	if len(parts) == 1 {
		// separator absent; fall through to the next level
		return s.splitText(text, rest)
	}
	var pieces []string
	for _, part := range parts {
		if runeLen(part) <= s.maxChunkSize {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, s.splitText(part, rest)...)
	}
	return pieces
}

// pack merges adjacent pieces into chunks of at most maxChunkSize
// runes, seeding each new chunk with the previous chunk's trailing
// overlap runes. The seed is shortened when needed so the size bound
// always holds.
func (s *RecursiveSplitter) pack(pieces []string) []string {
	var out []string
	cur := ""
	fresh := 0 // runes in cur beyond the carried-over seed
	for _, piece := range pieces {
		pl := runeLen(piece)
		if fresh > 0 && runeLen(cur)+pl > s.maxChunkSize {
			out = append(out, cur)
			keep := s.overlap
			if keep > s.maxChunkSize-pl {
				keep = s.maxChunkSize - pl
			}
			cur = tailRunes(cur, keep)
			fresh = 0
		}
		cur += piece
		fresh += pl
	}
	if fresh > 0 {
		out = append(out, cur)
	}
	return out
}

func splitAfter(text, sep string) []string {
	raw := strings.SplitAfter(text, sep)
	// drop a trailing empty element left when text ends with sep
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	return raw
}

func runeLen(s string) int {
	return len([]rune(s))
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func cutRunes(s string, size int) []string {
	r := []rune(s)
	var out []string
	for i := 0; i < len(r); i += size {
		end := i + size
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[i:end]))
	}
	return out
}
