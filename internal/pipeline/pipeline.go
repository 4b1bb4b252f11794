package pipeline

import (
	"fmt"
	"strings"

	"csvrag/internal/domain"
	"csvrag/internal/loader"
)

// Stage names the four phases of a build, reported through Progress so
// a caller can see where a failed build stopped.
type Stage string

const (
	StageLoad    Stage = "load"
	StageChunk   Stage = "chunk"
	StagePrepare Stage = "prepare"
	StageIndex   Stage = "index"
)

// ProgressFunc receives one call per build stage.
type ProgressFunc func(stage Stage, detail string)

// Options tunes query-time behavior and the rebuild policy.
type Options struct {
	TopK          int
	MinWords      int
	MaxWords      int
	MaxInputChars int
	// ResetOnBuild clears the store before indexing; when false a
	// rebuild appends to whatever the persisted store already holds.
	ResetOnBuild bool
	Progress     ProgressFunc
}

// Pipeline wires loader, splitter, embedder, store and summarizer into
// a single build-then-query flow. It has exactly two states: unbuilt
// and ready. Query is rejected until Build has completed.
type Pipeline struct {
	loader     *loader.CSVLoader
	splitter   domain.Splitter
	embedder   domain.Embedder
	store      domain.VectorStore
	summarizer domain.Summarizer
	opts       Options
	ready      bool
}

func New(l *loader.CSVLoader, splitter domain.Splitter, embedder domain.Embedder, store domain.VectorStore, summarizer domain.Summarizer, opts Options) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 120
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = 6000
	}
	return &Pipeline{
		loader:     l,
		splitter:   splitter,
		embedder:   embedder,
		store:      store,
		summarizer: summarizer,
		opts:       opts,
	}
}

// Build runs load, chunk, prepare and index in order. Any stage error
// aborts the build and leaves the pipeline unbuilt; nothing is retried.
func (p *Pipeline) Build(path string) error {
	p.ready = false

	p.progress(StageLoad, path)
	records, err := p.loader.Load(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data rows in %s", path)
	}

	p.progress(StageChunk, fmt.Sprintf("%d records", len(records)))
	var chunks []domain.Chunk
	var texts []string
	for _, rec := range records {
		cs, err := p.splitter.Split(rec)
		if err != nil {
			return fmt.Errorf("chunk record %d: %w", rec.Index, err)
		}
		for _, c := range cs {
			chunks = append(chunks, c)
			texts = append(texts, c.Text)
		}
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no text to index in %s", path)
	}

	p.progress(StagePrepare, p.embedder.Name())
	if err := p.embedder.Prepare(texts); err != nil {
		return &domain.ModelLoadError{Model: p.embedder.Name(), Err: err}
	}
	if p.opts.ResetOnBuild {
		if err := p.store.Clear(); err != nil {
			return err
		}
	}

	p.progress(StageIndex, fmt.Sprintf("%d chunks", len(chunks)))
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := p.embedder.Embed(chunks[i].Text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", chunks[i].ID, err)
		}
		vectors[i] = vec
	}
	if err := p.store.Init(p.embedder.Dimension()); err != nil {
		return err
	}
	if err := p.store.Upsert(chunks, vectors); err != nil {
		return err
	}

	p.ready = true
	return nil
}

// Ready reports whether Build has completed.
func (p *Pipeline) Ready() bool { return p.ready }

// Query embeds the question, retrieves the top-k nearest chunks and
// summarizes their concatenated text. The retrieved chunks' metadata
// is returned in retrieval order as provenance.
func (p *Pipeline) Query(query string, topK int) (*domain.Answer, error) {
	if !p.ready {
		return nil, domain.ErrNotReady
	}
	if topK <= 0 {
		topK = p.opts.TopK
	}
	vec, err := p.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := p.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrNoResults
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Chunk.Text)
	}
	context := truncateRunes(b.String(), p.opts.MaxInputChars)
	summary, err := p.summarizer.Summarize(context, p.opts.MinWords, p.opts.MaxWords)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	sources := make([]domain.Metadata, len(results))
	for i, r := range results {
		sources[i] = r.Chunk.Meta
	}
	return &domain.Answer{
		Summary: summary,
		Sources: sources,
		Results: results,
	}, nil
}

// truncateRunes bounds the summarizer input at a rune boundary so the
// model never sees a torn multibyte sequence.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func (p *Pipeline) progress(stage Stage, detail string) {
	if p.opts.Progress != nil {
		p.opts.Progress(stage, detail)
	}
}
