package domain

// Metadata carries the non-text columns of a source row as string pairs.
type Metadata map[string]string

// Clone returns an independent copy so chunks never share a map with
// their parent record.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Record is a single row of the input table. Identity is the zero-based
// position among data rows; records are never mutated after loading.
type Record struct {
	Index int
	Text  string
	Meta  Metadata
}

// Chunk is a bounded substring of one record's text. Every chunk carries
// a copy of its record's metadata (text column excluded).
type Chunk struct {
	ID          string
	RecordIndex int
	Index       int
	Text        string
	Meta        Metadata
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Answer is the outcome of one query: a generated summary plus the
// metadata of the retrieved chunks in retrieval order.
type Answer struct {
	Summary string
	Sources []Metadata
	Results []SearchResult
}

// Splitter divides a record's text into overlapping chunks.
type Splitter interface {
	Split(rec Record) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// VectorStore persists (text, vector, metadata) triples and supports
// nearest-neighbor search. Search returns results ordered by decreasing
// score, never more than min(topK, Count()).
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Count() (int, error)
	Clear() error
	Close() error
}

// Summarizer produces an abstractive summary bounded by word counts.
type Summarizer interface {
	Summarize(text string, minWords, maxWords int) (string, error)
}
