package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvrag/internal/chunker"
	"csvrag/internal/domain"
	"csvrag/internal/embedding/tfidf"
	"csvrag/internal/loader"
	"csvrag/internal/summarizer"
	"csvrag/internal/vectorstore/bolt"
	"csvrag/internal/vectorstore/memory"
)

const testCSV = "date,text\n" +
	"2024-03-01,\"The launch vehicle completed its static fire test. Engineers reviewed telemetry overnight.\"\n" +
	"2024-03-02,\"Marine biologists tagged twelve bluefin tuna near the strait. Migration patterns will be tracked by satellite.\"\n" +
	"2024-03-03,\"The city council approved the new tram line budget. Construction begins in the autumn.\"\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	return New(
		loader.NewCSVLoader("text", ','),
		chunker.NewRecursiveSplitter(400, 50),
		tfidf.NewEmbedder(),
		memory.NewStorage(),
		summarizer.NewFrequencySummarizer(),
		opts,
	)
}

func TestQueryBeforeBuildNotReady(t *testing.T) {
	p := newTestPipeline(t, Options{})
	_, err := p.Query("anything", 3)
	assert.ErrorIs(t, err, domain.ErrNotReady)
	assert.False(t, p.Ready())
}

func TestBuildThenQueryEndToEnd(t *testing.T) {
	p := newTestPipeline(t, Options{TopK: 3})
	var stages []Stage
	p.opts.Progress = func(stage Stage, detail string) { stages = append(stages, stage) }

	require.NoError(t, p.Build(writeCSV(t, testCSV)))
	assert.True(t, p.Ready())
	assert.Equal(t, []Stage{StageLoad, StageChunk, StagePrepare, StageIndex}, stages)

	// phrase copied verbatim from row 2's text
	ans, err := p.Query("Marine biologists tagged twelve bluefin tuna", 3)
	require.NoError(t, err)
	require.NotEmpty(t, ans.Sources)
	assert.Equal(t, "2024-03-02", ans.Sources[0]["date"])
	assert.NotEmpty(t, ans.Summary)
	assert.Len(t, ans.Sources, len(ans.Results))
}

func TestRoundTripTopResult(t *testing.T) {
	p := newTestPipeline(t, Options{})
	require.NoError(t, p.Build(writeCSV(t, testCSV)))

	// querying with the exact text of an indexed chunk returns it on top
	ans, err := p.Query("The city council approved the new tram line budget. Construction begins in the autumn.", 1)
	require.NoError(t, err)
	require.Len(t, ans.Results, 1)
	assert.Equal(t, 2, ans.Results[0].Chunk.RecordIndex)
}

func TestResultCountBounded(t *testing.T) {
	p := newTestPipeline(t, Options{})
	require.NoError(t, p.Build(writeCSV(t, testCSV)))

	ans, err := p.Query("launch vehicle telemetry", 50)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(ans.Results), 3)
}

func TestBuildMissingTextColumn(t *testing.T) {
	p := newTestPipeline(t, Options{})
	err := p.Build(writeCSV(t, "date,body\n2024-01-01,hello there\n"))
	require.Error(t, err)
	var schemaErr *domain.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.False(t, p.Ready())
}

func TestQueryNoResults(t *testing.T) {
	p := newTestPipeline(t, Options{})
	require.NoError(t, p.Build(writeCSV(t, testCSV)))
	p.store = emptyStore{}

	_, err := p.Query("anything at all", 3)
	assert.ErrorIs(t, err, domain.ErrNoResults)
}

func TestRebuildResetsWhenConfigured(t *testing.T) {
	p := newTestPipeline(t, Options{ResetOnBuild: true})
	path := writeCSV(t, testCSV)
	require.NoError(t, p.Build(path))
	require.NoError(t, p.Build(path))

	n, err := p.store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRebuildAppendsByDefault(t *testing.T) {
	p := newTestPipeline(t, Options{})
	path := writeCSV(t, testCSV)
	require.NoError(t, p.Build(path))
	require.NoError(t, p.Build(path))

	n, err := p.store.Count()
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestRebuildPersistedStoreAfterCorpusEdit(t *testing.T) {
	dir := t.TempDir()
	store, err := bolt.Open(filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	defer store.Close()

	p := New(
		loader.NewCSVLoader("text", ','),
		chunker.NewRecursiveSplitter(400, 50),
		tfidf.NewEmbedder(),
		store,
		summarizer.NewFrequencySummarizer(),
		Options{ResetOnBuild: true},
	)
	require.NoError(t, p.Build(writeCSV(t, testCSV)))

	// an edited corpus changes the tfidf vocabulary, and with it the
	// vector dimension; a replacing rebuild must accept that
	edited := "date,text\n" +
		"2024-04-01,\"Entirely different vocabulary appears in this revision of the corpus.\"\n" +
		"2024-04-02,\"Fresh words everywhere, nothing shared with the earlier rows.\"\n"
	require.NoError(t, p.Build(writeCSV(t, edited)))

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ans, err := p.Query("Entirely different vocabulary", 1)
	require.NoError(t, err)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "2024-04-01", ans.Sources[0]["date"])
}

// emptyStore always retrieves nothing.
type emptyStore struct{}

func (emptyStore) Init(int) error                           { return nil }
func (emptyStore) Upsert([]domain.Chunk, [][]float64) error { return nil }
func (emptyStore) Search([]float64, int) ([]domain.SearchResult, error) {
	return nil, nil
}
func (emptyStore) Count() (int, error) { return 0, nil }
func (emptyStore) Clear() error        { return nil }
func (emptyStore) Close() error        { return nil }
