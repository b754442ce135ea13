package vectorstore

import (
	"math"
	"reflect"
	"testing"

	"academiqa-backend/models"
)

func chunk(docName, chunkID, text string) models.Chunk {
	return models.Chunk{
		Text: text,
		Metadata: models.ChunkMetadata{
			ChunkID:      chunkID,
			DocumentName: docName,
		},
	}
}

func TestAppendAndCount(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	chunks := []models.Chunk{
		chunk("a.pdf", "chunk_0", "alpha"),
		chunk("a.pdf", "chunk_1", "beta"),
	}
	vectors := [][]float32{{1, 0}, {0, 1}}

	if err := store.Append(chunks, vectors); err != nil {
		t.Fatalf("append: %v", err)
	}
	if store.Count() != 2 {
		t.Errorf("count = %d, want 2", store.Count())
	}

	// Appends accumulate, never replace
	if err := store.Append(chunks, vectors); err != nil {
		t.Fatalf("second append: %v", err)
	}
	if store.Count() != 4 {
		t.Errorf("count after re-append = %d, want 4", store.Count())
	}
}

func TestAppendLengthMismatch(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	err = store.Append([]models.Chunk{chunk("a.pdf", "chunk_0", "x")}, nil)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if store.Count() != 0 {
		t.Errorf("count = %d after failed append", store.Count())
	}
}

func TestSearchOrdering(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	chunks := []models.Chunk{
		chunk("a.pdf", "chunk_0", "exact match"),
		chunk("a.pdf", "chunk_1", "close match"),
		chunk("b.pdf", "chunk_0", "orthogonal"),
	}
	vectors := [][]float32{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	}
	if err := store.Append(chunks, vectors); err != nil {
		t.Fatalf("append: %v", err)
	}

	hits, err := store.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "exact match" {
		t.Errorf("best hit = %q", hits[0].Text)
	}
	if hits[1].Text != "close match" {
		t.Errorf("second hit = %q", hits[1].Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %f < %f", hits[0].Score, hits[1].Score)
	}
}

func TestSearchKLargerThanCollection(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Append([]models.Chunk{chunk("a.pdf", "chunk_0", "only")}, [][]float32{{1, 0}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	hits, err := store.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}
}

func TestSearchEmptyStore(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	hits, err := store.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestDocumentNamesSortedDistinct(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	chunks := []models.Chunk{
		chunk("zeta.pdf", "chunk_0", "z"),
		chunk("alpha.pdf", "chunk_0", "a"),
		chunk("zeta.pdf", "chunk_1", "z2"),
	}
	vectors := [][]float32{{1}, {1}, {1}}
	if err := store.Append(chunks, vectors); err != nil {
		t.Fatalf("append: %v", err)
	}

	want := []string{"alpha.pdf", "zeta.pdf"}
	if got := store.DocumentNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("DocumentNames() = %v, want %v", got, want)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	chunks := []models.Chunk{chunk("a.pdf", "chunk_0", "persisted text")}
	if err := store.Append(chunks, [][]float32{{0.5, 0.5}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if reopened.Count() != 1 {
		t.Fatalf("count after reopen = %d, want 1", reopened.Count())
	}
	hits, err := reopened.Search([]float32{0.5, 0.5}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if hits[0].Text != "persisted text" {
		t.Errorf("hit text = %q", hits[0].Text)
	}
	if hits[0].Metadata.DocumentName != "a.pdf" {
		t.Errorf("metadata not persisted: %+v", hits[0].Metadata)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}
