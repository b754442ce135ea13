package routes

import (
	"errors"
	"net/http"
	"time"

	"academiqa-backend/internal/config"
	"academiqa-backend/internal/telemetry"
	"academiqa-backend/logging"
	"academiqa-backend/models"
	"academiqa-backend/services"
	"academiqa-backend/utils"

	"github.com/gin-gonic/gin"
)

// SetupPaperRoutes registers the PDF upload endpoint.
func SetupPaperRoutes(router *gin.Engine, cfg *config.Config, pdfService *services.PDFService, recorder logging.Recorder, metrics *telemetry.Metrics) {
	papers := router.Group("/pdf")
	papers.POST("/papers", handlePaperUpload(cfg, pdfService, recorder, metrics))
}

func handlePaperUpload(cfg *config.Config, pdfService *services.PDFService, recorder logging.Recorder, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Exactly one log record per request, success or failure
		respond := func(status int, success bool, message string, data interface{}, extra map[string]interface{}) {
			recorder.LogAsync(models.LogRecord{
				Timestamp:      time.Now().UTC().Format(time.RFC3339),
				Endpoint:       "/pdf/papers",
				Method:         "POST",
				StatusCode:     status,
				Message:        message,
				AdditionalData: extra,
			})
			if metrics != nil {
				result := "success"
				if status >= 400 {
					result = "error"
				}
				chunks := 0
				if d, ok := data.(models.UploadData); ok {
					chunks = d.ChunksProcessed
				}
				metrics.RecordPDFProcessing(time.Since(start).Seconds(), result, chunks)
			}
			c.JSON(status, gin.H{"success": success, "message": message, "data": data})
		}

		// Bound the multipart body before touching it
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxFileSize)

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respond(http.StatusBadRequest, false, "File size exceeds maximum limit", nil, nil)
				return
			}
			respond(http.StatusBadRequest, false, "No file provided", nil, nil)
			return
		}
		defer file.Close()

		recordID, chunkCount, err := pdfService.Process(c.Request.Context(), file, header.Filename)
		if err != nil {
			status := http.StatusInternalServerError
			if utils.IsValidationError(err) {
				status = http.StatusBadRequest
			}
			respond(status, false, err.Error(), nil, map[string]interface{}{
				"filename": header.Filename,
			})
			return
		}

		respond(http.StatusOK, true, "PDF uploaded and embedded successfully",
			models.UploadData{RecordID: recordID, ChunksProcessed: chunkCount},
			map[string]interface{}{
				"filename":  header.Filename,
				"record_id": recordID,
				"chunks":    chunkCount,
			})
	}
}
