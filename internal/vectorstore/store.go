package vectorstore

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"academiqa-backend/models"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// CollectionName is the single vector collection this service maintains.
const CollectionName = "pdf_chunks"

var bucketChunks = []byte(CollectionName)

// Store is a persistent, append-only vector collection backed by BoltDB.
// Uses brute-force cosine search; entries are keyed by random IDs, so
// re-indexing the same document appends a second copy of its chunks.
type Store struct {
	db *bbolt.DB
	mu sync.RWMutex
	// In-memory cache for fast search
	entries map[string]storedEntry
}

type storedEntry struct {
	Vector   []float32            `json:"v"`
	Text     string               `json:"t"`
	Metadata models.ChunkMetadata `json:"m"`
}

// SearchResult is one nearest-neighbor hit.
type SearchResult struct {
	ID       string
	Score    float64
	Text     string
	Metadata models.ChunkMetadata
}

// Open opens (creating if needed) the collection file under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector storage dir: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, CollectionName+".db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketChunks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, entries: make(map[string]storedEntry)}
	if err := s.loadEntries(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vector entries: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) loadEntries() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChunks)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			s.entries[string(k)] = stored
			return nil
		})
	})
}

// Append adds (vector, text, metadata) triples to the collection in a
// single write transaction. Purely additive: existing entries are never
// replaced, and no uniqueness is enforced on chunk identity.
func (s *Store) Append(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make(map[string]storedEntry, len(chunks))
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChunks)
		if b == nil {
			return fmt.Errorf("collection bucket %s not found", CollectionName)
		}
		for i, chunk := range chunks {
			stored := storedEntry{
				Vector:   vectors[i],
				Text:     chunk.Text,
				Metadata: chunk.Metadata,
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			id := uuid.NewString()
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
			added[id] = stored
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id, stored := range added {
		s.entries[id] = stored
	}
	return nil
}

// Search returns the k nearest entries to the query by cosine similarity.
func (s *Store) Search(query []float32, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}

	scores := make([]SearchResult, 0, len(s.entries))
	for id, entry := range s.entries {
		scores = append(scores, SearchResult{
			ID:       id,
			Score:    cosineSimilarity(query, entry.Vector),
			Text:     entry.Text,
			Metadata: entry.Metadata,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Count returns the number of indexed chunks in the collection.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// DocumentNames returns the distinct document_name values present in the
// collection's metadata, sorted for deterministic resolver behavior.
func (s *Store) DocumentNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, entry := range s.entries {
		if entry.Metadata.DocumentName != "" {
			seen[entry.Metadata.DocumentName] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
