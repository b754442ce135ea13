package services

import (
	"context"
	"fmt"

	"academiqa-backend/internal/ai"
	"academiqa-backend/internal/vectorstore"
	"academiqa-backend/models"
	"academiqa-backend/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Indexer embeds chunks and appends them to the vector collection.
type Indexer struct {
	embedder ai.Embedder
	store    *vectorstore.Store
}

func NewIndexer(embedder ai.Embedder, store *vectorstore.Store) *Indexer {
	return &Indexer{embedder: embedder, store: store}
}

// Index embeds every chunk's text and persists the (vector, text,
// metadata) triples in one additive store write. Returns the chunk count
// on success. Either all chunks are committed or an error propagates;
// there is no partial-success reporting and no rollback beyond the single
// store transaction.
func (ix *Indexer) Index(ctx context.Context, chunks []models.Chunk) (int, error) {
	tracer := otel.Tracer("indexer")
	ctx, span := tracer.Start(ctx, "indexer.index")
	defer span.End()
	span.SetAttributes(attribute.Int("indexer.chunks", len(chunks)))

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			span.SetAttributes(attribute.Bool("indexer.error", true))
			return 0, utils.NewProcessingError(
				fmt.Sprintf("Error processing PDF: embedding chunk %s failed", chunk.Metadata.ChunkID), err)
		}
		vectors[i] = vec
	}

	if err := ix.store.Append(chunks, vectors); err != nil {
		span.SetAttributes(attribute.Bool("indexer.error", true))
		return 0, utils.NewProcessingError("Error processing PDF: vector store write failed", err)
	}

	return len(chunks), nil
}
