package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"csvrag/internal/domain"
	"csvrag/internal/vectorstore"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// entry is the persisted triple. Chunks are never mutated, so entries
// are append-only under monotonically increasing keys.
type entry struct {
	Chunk  domain.Chunk `json:"chunk"`
	Vector []float64    `json:"vector"`
}

// Storage is a path-addressed persistent store on bbolt. Reopening an
// existing file resumes the index; search is a brute-force cosine scan.
type Storage struct {
	db   *bbolt.DB
	path string
}

// Open creates or opens the store file, creating parent directories as
// needed. Open failures surface as StorageError.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &domain.StorageError{Path: path, Err: err}
	}
	return &Storage{db: db, path: path}, nil
}

// Init records the vector dimension. A dimension already persisted from
// a previous run must match, otherwise the index and the embedder have
// diverged and searching would be meaningless.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return &domain.StorageError{Path: s.path, Err: fmt.Errorf("invalid dimension %d", dimension)}
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if raw := meta.Get(keyDimension); raw != nil {
			stored := int(binary.BigEndian.Uint64(raw))
			if stored != dimension {
				return fmt.Errorf("stored dimension %d does not match %d", stored, dimension)
			}
			return nil
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(dimension))
		return meta.Put(keyDimension, buf)
	})
	if err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return &domain.StorageError{Path: s.path, Err: fmt.Errorf("chunks and vectors length mismatch")}
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for i := range chunks {
			data, err := json.Marshal(entry{Chunk: chunks[i], Vector: vectors[i]})
			if err != nil {
				return err
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	var results []domain.SearchResult
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(_, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			results = append(results, domain.SearchResult{
				Chunk: e.Chunk,
				Score: vectorstore.Cosine(e.Vector, vector),
			})
			return nil
		})
	})
	if err != nil {
		return nil, &domain.StorageError{Path: s.path, Err: err}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Storage) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEntries).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, &domain.StorageError{Path: s.path, Err: err}
	}
	return n, nil
}

// Clear drops all entries and the recorded dimension. A rebuild after
// Clear may index with a different embedder vocabulary; the dimension
// guard in Init only protects appends to surviving data.
func (s *Storage) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return err
		}
		if _, err := tx.CreateBucket(bucketEntries); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete(keyDimension)
	})
	if err != nil {
		return &domain.StorageError{Path: s.path, Err: err}
	}
	return nil
}

func (s *Storage) Close() error { return s.db.Close() }
