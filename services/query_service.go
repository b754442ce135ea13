package services

import (
	"context"
	"fmt"
	"time"

	"academiqa-backend/internal/ai"
	"academiqa-backend/internal/logger"
	"academiqa-backend/internal/vectorstore"
	"academiqa-backend/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// retrievalTopK is the fixed number of nearest chunks fed to the model.
// Not configurable via the request.
const retrievalTopK = 3

const (
	noDocumentsAnswer = "No documents available for querying. Please upload a PDF file first via /pdf/papers endpoint"
	noResultsAnswer   = "No relevant information found for your question in the document. Try asking a different question or ensure the document contains relevant information."
)

// QueryService runs the retrieval + generation pipeline for one question.
type QueryService struct {
	embedder  ai.Embedder
	store     *vectorstore.Store
	generator *AnswerGenerator
}

func NewQueryService(embedder ai.Embedder, store *vectorstore.Store, generator *AnswerGenerator) *QueryService {
	return &QueryService{embedder: embedder, store: store, generator: generator}
}

// DocumentNames lists the distinct document names currently indexed,
// in deterministic sorted order.
func (qs *QueryService) DocumentNames() []string {
	return qs.store.DocumentNames()
}

// Count reports how many chunks the collection holds.
func (qs *QueryService) Count() int {
	return qs.store.Count()
}

// QueryDetails carries the diagnostic payload recorded alongside a query:
// previews of the retrieved chunks and per-stage timing metrics.
type QueryDetails struct {
	RetrievedChunks []models.RetrievedChunk
	Metrics         map[string]interface{}
}

// Answer embeds the question, retrieves the top-3 nearest chunks over the
// whole collection, and generates an answer scoped to documentName by
// prompt instruction only (the similarity search itself is unfiltered).
//
// Never returns an error: every failure along the way is logged and
// encoded into the answer text of a successful-shaped result.
func (qs *QueryService) Answer(ctx context.Context, question, documentName string) (models.QueryResult, QueryDetails) {
	tracer := otel.Tracer("query-service")
	ctx, span := tracer.Start(ctx, "query.answer")
	defer span.End()
	span.SetAttributes(attribute.String("query.document", documentName))

	start := time.Now()
	details := QueryDetails{Metrics: map[string]interface{}{}}

	totalIndexed := qs.store.Count()
	if totalIndexed == 0 {
		return models.QueryResult{Answer: noDocumentsAnswer, Citations: []models.Citation{}}, details
	}

	retrievalStart := time.Now()
	queryVec, err := qs.embedder.Embed(ctx, question)
	if err != nil {
		logger.Error("Question embedding failed", "error", err)
		return errorResult(err), details
	}

	hits, err := qs.store.Search(queryVec, retrievalTopK)
	if err != nil {
		logger.Error("Similarity search failed", "error", err)
		return errorResult(err), details
	}
	retrievalTime := time.Since(retrievalStart)

	if len(hits) == 0 {
		return models.QueryResult{Answer: noResultsAnswer, Citations: []models.Citation{}}, details
	}

	contexts := make([]string, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Text
		details.RetrievedChunks = append(details.RetrievedChunks, models.RetrievedChunk{
			Content:      previewText(hit.Text),
			Metadata:     hit.Metadata,
			DocumentName: hit.Metadata.DocumentName,
			ChunkID:      hit.Metadata.ChunkID,
		})
	}

	modelStart := time.Now()
	result := qs.generator.Generate(ctx, question, documentName, contexts)
	modelTime := time.Since(modelStart)

	details.Metrics = map[string]interface{}{
		"total_processing_time": time.Since(start).Seconds(),
		"retrieval_time":        retrievalTime.Seconds(),
		"model_response_time":   modelTime.Seconds(),
		"chunks_retrieved":      len(hits),
		"total_documents_in_db": totalIndexed,
		"document_name":         documentName,
	}
	span.SetAttributes(attribute.Int("query.chunks_retrieved", len(hits)))

	return result, details
}

func errorResult(err error) models.QueryResult {
	return models.QueryResult{
		Answer:    fmt.Sprintf("Error processing the question: %v", err),
		Citations: []models.Citation{},
	}
}

func previewText(text string) string {
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
