package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"academiqa-backend/internal/config"
	"academiqa-backend/internal/logger"
	"academiqa-backend/internal/telemetry"
	"academiqa-backend/logging"
	"academiqa-backend/models"
	"academiqa-backend/services"

	"github.com/gin-gonic/gin"
)

// SetupQueryRoutes registers the question answering endpoint.
func SetupQueryRoutes(router *gin.Engine, cfg *config.Config, queryService *services.QueryService, recorder logging.Recorder, metrics *telemetry.Metrics) {
	query := router.Group("/query")
	query.POST("/", handleQuery(queryService, recorder, metrics))
}

func handleQuery(queryService *services.QueryService, recorder logging.Recorder, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logged := false

		respond := func(status int, answer, pdfName string, citations []models.Citation, message string, extra map[string]interface{}) {
			if citations == nil {
				citations = []models.Citation{}
			}
			recorder.LogAsync(models.LogRecord{
				Timestamp:      time.Now().UTC().Format(time.RFC3339),
				Endpoint:       "/query/",
				Method:         "POST",
				StatusCode:     status,
				Message:        message,
				AdditionalData: extra,
			})
			logged = true
			if metrics != nil {
				result := "success"
				if status >= 400 {
					result = "error"
				}
				metrics.RecordQuery(time.Since(start).Seconds(), result)
			}
			c.JSON(status, gin.H{"answer": answer, "pdf_name": pdfName, "citations": citations})
		}

		// Shaped 500 instead of an empty recovery response; the log record
		// still gets written exactly once.
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Query handler panic", "panic", r)
				if !logged {
					respond(http.StatusInternalServerError,
						fmt.Sprintf("Error processing the question: %v", r), "", nil,
						fmt.Sprintf("Error processing query: %v", r), nil)
				}
			}
		}()

		question := strings.TrimSpace(c.PostForm("question"))
		if question == "" {
			respond(http.StatusBadRequest, "Please provide a question.", "", nil,
				"Missing question", nil)
			return
		}

		// Empty collection short-circuits before document resolution
		if queryService.Count() == 0 {
			respond(http.StatusOK,
				"No documents available for querying. Please upload a PDF file first via /pdf/papers endpoint",
				"", nil, "No documents indexed", map[string]interface{}{"question": question})
			return
		}

		available := queryService.DocumentNames()
		mentioned := services.ResolveDocuments(question, available)
		if len(mentioned) == 0 {
			answer := fmt.Sprintf(
				"Please specify which document you're asking about. Available documents: %s",
				strings.Join(available, ", "))
			respond(http.StatusBadRequest, answer, "", nil,
				"No document specified in question", map[string]interface{}{
					"question":            question,
					"available_documents": available,
					"error":               "Document name not mentioned in question",
				})
			return
		}

		result, details := queryService.Answer(c.Request.Context(), question, mentioned[0])

		retrieved := make([]interface{}, 0, len(details.RetrievedChunks))
		for _, chunk := range details.RetrievedChunks {
			retrieved = append(retrieved, map[string]interface{}{
				"content":       chunk.Content,
				"metadata":      chunk.Metadata,
				"document_name": chunk.DocumentName,
				"chunk_id":      chunk.ChunkID,
			})
		}
		citations := make([]interface{}, 0, len(result.Citations))
		for _, citation := range result.Citations {
			citations = append(citations, map[string]interface{}{
				"document_name": citation.DocumentName,
				"chunk_id":      citation.ChunkID,
			})
		}

		respond(http.StatusOK, result.Answer, mentioned[0], result.Citations,
			"Query executed successfully", map[string]interface{}{
				"question":            question,
				"answer":              result.Answer,
				"citations":           citations,
				"processing_time":     time.Since(start).Seconds(),
				"mentioned_documents": mentioned,
				"available_documents": available,
				"retrieved_chunks":    retrieved,
				"performance_metrics": details.Metrics,
			})
	}
}
