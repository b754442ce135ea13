package routes

import (
	"fmt"
	"net/http"
	"time"

	"academiqa-backend/logging"
	"academiqa-backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetupLogRoutes registers the request log retrieval endpoint.
func SetupLogRoutes(router *gin.Engine, recorder logging.Recorder) {
	logs := router.Group("/logs")
	logs.GET("/", handleLogFetch(recorder))
}

func handleLogFetch(recorder logging.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		logID := c.Query("log_id")

		records, err := recorder.Recent(c.Request.Context())
		if err != nil {
			recorder.LogAsync(models.LogRecord{
				Timestamp:  time.Now().UTC().Format(time.RFC3339),
				Endpoint:   "/logs/",
				Method:     "GET",
				StatusCode: http.StatusInternalServerError,
				Message:    fmt.Sprintf("Error fetching logs: %v", err),
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": fmt.Sprintf("Error fetching logs: %v", err),
				"logs":    []interface{}{},
			})
			return
		}

		if logID != "" {
			filtered := make([]map[string]interface{}, 0, len(records))
			for _, record := range records {
				if matchesLogID(record, logID) {
					filtered = append(filtered, record)
				}
			}
			records = filtered
		}

		recorder.LogAsync(models.LogRecord{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Endpoint:   "/logs/",
			Method:     "GET",
			StatusCode: http.StatusOK,
			Message:    "Log records fetched",
			AdditionalData: map[string]interface{}{
				"count": len(records),
			},
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Log records retrieved",
			"logs":    records,
		})
	}
}

var logIDKeys = []string{"record_id", "log_id", "id"}

// matchesLogID compares the stringified record_id/log_id/id of a record
// against the requested value, checking both the record's top level and
// its additional_data payload.
func matchesLogID(record map[string]interface{}, logID string) bool {
	for _, key := range logIDKeys {
		if value, ok := record[key]; ok && fmt.Sprint(value) == logID {
			return true
		}
	}
	if nested := record["additional_data"]; nested != nil {
		for _, key := range logIDKeys {
			if value, ok := lookupField(nested, key); ok && fmt.Sprint(value) == logID {
				return true
			}
		}
	}
	return false
}

// lookupField reads a key out of a decoded BSON document, which may be a
// plain map or an ordered primitive.D depending on the driver's decoding.
func lookupField(doc interface{}, key string) (interface{}, bool) {
	switch d := doc.(type) {
	case map[string]interface{}:
		v, ok := d[key]
		return v, ok
	case primitive.M:
		v, ok := d[key]
		return v, ok
	case primitive.D:
		for _, elem := range d {
			if elem.Key == key {
				return elem.Value, true
			}
		}
	}
	return nil, false
}
