package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

var keyPrefix = []byte("vec:")

// BadgerStore is a Store backed by a Badger key-value database. Vectors
// are stored one key per entity, encoded as little-endian float32s.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a store at path. An empty path opens
// an in-memory database, which tests use.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

func (s *BadgerStore) Upsert(ctx context.Context, name string, embedding []float32) error {
	if name == "" {
		return types.ErrEmptyName
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(vectorKey(name), encodeVector(embedding))
	})
	if err != nil {
		return &types.VectorStoreError{Op: "upsert", Err: err}
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(vectorKey(name))
	})
	if err != nil {
		return &types.VectorStoreError{Op: "delete", Err: err}
	}
	return nil
}

func (s *BadgerStore) Search(ctx context.Context, query []float32, limit int, minSimilarity float64) ([]Match, error) {
	var matches []Match
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(keyPrefix):])
			err := item.Value(func(val []byte) error {
				sim := Cosine(query, decodeVector(val))
				if sim >= minSimilarity {
					matches = append(matches, Match{Name: name, Similarity: sim})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &types.VectorStoreError{Op: "search", Err: err}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Name < matches[j].Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func vectorKey(name string) []byte {
	return append(append([]byte(nil), keyPrefix...), name...)
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v
}
