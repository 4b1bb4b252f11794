package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"csvrag/internal/domain"
	"csvrag/internal/vectorstore"
)

// Storage keeps the index in a SQLite file. Vectors and metadata are
// stored as JSON columns; similarity is computed in Go over a full
// scan, which is fine at the corpus sizes this pipeline targets.
type Storage struct {
	db   *sqlx.DB
	path string
}

type row struct {
	ChunkID     string `db:"chunk_id"`
	RecordIndex int    `db:"record_idx"`
	Ord         int    `db:"ord"`
	Text        string `db:"text"`
	Meta        string `db:"meta"`
	Vector      string `db:"vector"`
}

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_id TEXT NOT NULL,
	record_idx INTEGER NOT NULL,
	ord INTEGER NOT NULL,
	text TEXT NOT NULL,
	meta TEXT NOT NULL,
	vector TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS index_meta (
	key TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	return &Storage{db: db, path: path}, nil
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return &domain.StorageError{Path: s.path, Err: fmt.Errorf("invalid dimension %d", dimension)}
	}
	var stored int
	err := s.db.Get(&stored, `SELECT value FROM index_meta WHERE key = 'dimension'`)
	if err == nil {
		if stored != dimension {
			return &domain.StorageError{
				Path: s.path,
				Err:  fmt.Errorf("stored dimension %d does not match %d", stored, dimension),
			}
		}
		return nil
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO index_meta (key, value) VALUES ('dimension', ?)`, dimension)
	if err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return &domain.StorageError{Path: s.path, Err: fmt.Errorf("chunks and vectors length mismatch")}
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	defer tx.Rollback()
	for i := range chunks {
		meta, err := json.Marshal(chunks[i].Meta)
		if err != nil {
			return &domain.StorageError{Path: s.path, Err: err}
		}
		vec, err := json.Marshal(vectors[i])
		if err != nil {
			return &domain.StorageError{Path: s.path, Err: err}
		}
		_, err = tx.Exec(
			`INSERT INTO chunks (chunk_id, record_idx, ord, text, meta, vector) VALUES (?, ?, ?, ?, ?, ?)`,
			chunks[i].ID, chunks[i].RecordIndex, chunks[i].Index, chunks[i].Text, string(meta), string(vec),
		)
		if err != nil {
			return &domain.StorageError{Path: s.path, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	var rows []row
	if err := s.db.Select(&rows, `SELECT chunk_id, record_idx, ord, text, meta, vector FROM chunks`); err != nil {
		return nil, &domain.StorageError{Path: s.path, Err: err}
	}
	results := make([]domain.SearchResult, 0, len(rows))
	for _, r := range rows {
		var meta domain.Metadata
		if err := json.Unmarshal([]byte(r.Meta), &meta); err != nil {
			return nil, &domain.StorageError{Path: s.path, Err: err}
		}
		var vec []float64
		if err := json.Unmarshal([]byte(r.Vector), &vec); err != nil {
			return nil, &domain.StorageError{Path: s.path, Err: err}
		}
		results = append(results, domain.SearchResult{
			Chunk: domain.Chunk{
				ID:          r.ChunkID,
				RecordIndex: r.RecordIndex,
				Index:       r.Ord,
				Text:        r.Text,
				Meta:        meta,
			},
			Score: vectorstore.Cosine(vec, vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Storage) Count() (int, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM chunks`); err != nil {
		return 0, &domain.StorageError{Path: s.path, Err: err}
	}
	return n, nil
}

// Clear drops all entries and the recorded dimension so a rebuild may
// use a different embedder vocabulary.
func (s *Storage) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM chunks`); err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	if _, err := s.db.Exec(`DELETE FROM index_meta`); err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	return nil
}

func (s *Storage) Close() error { return s.db.Close() }
