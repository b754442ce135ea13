package logging

import (
	"context"
	"sort"
	"time"

	"academiqa-backend/internal/logger"
	"academiqa-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// maxStringLength bounds every string field before persistence
	maxStringLength = 10000
	// perCollectionLimit caps the read from each log collection
	perCollectionLimit = 50
	// maxReturned caps the merged result
	maxReturned = 100
)

// Recorder is the fire-and-forget request log sink. Logging failures are
// never surfaced to the request that triggered them.
type Recorder interface {
	LogAsync(record models.LogRecord)
	Recent(ctx context.Context) ([]map[string]interface{}, error)
}

// MongoRecorder appends request log records to the active logs collection
// and reads back a merge of the active and legacy collections.
type MongoRecorder struct {
	logs      *mongo.Collection
	queryLogs *mongo.Collection
}

func NewMongoRecorder(db *mongo.Database) *MongoRecorder {
	return &MongoRecorder{
		logs:      db.Collection("logs"),
		queryLogs: db.Collection("query_logs"),
	}
}

// Log sanitizes and appends one record. Writes go to the logs collection
// only; query_logs is a legacy store kept for reads.
func (r *MongoRecorder) Log(ctx context.Context, record models.LogRecord) error {
	_, err := r.logs.InsertOne(ctx, Sanitize(record))
	return err
}

// LogAsync appends the record without blocking the request path. Failures
// are reported on the diagnostic channel and otherwise swallowed.
func (r *MongoRecorder) LogAsync(record models.LogRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Log(ctx, record); err != nil {
			logger.Warn("Failed to persist request log record", "error", err, "endpoint", record.Endpoint)
		}
	}()
}

// Recent fetches the most recent records from both log collections,
// merged and sorted by timestamp descending, at most 100 entries.
func (r *MongoRecorder) Recent(ctx context.Context) ([]map[string]interface{}, error) {
	batches := make([][]map[string]interface{}, 0, 2)

	for _, col := range []*mongo.Collection{r.logs, r.queryLogs} {
		opts := options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(perCollectionLimit).
			SetProjection(bson.M{"_id": 0})

		cursor, err := col.Find(ctx, bson.M{}, opts)
		if err != nil {
			return nil, err
		}

		var batch []map[string]interface{}
		if err := cursor.All(ctx, &batch); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	return mergeRecent(batches...), nil
}

// mergeRecent interleaves per-collection batches into one list sorted by
// timestamp descending, capped at maxReturned entries. The sort is stable
// so records sharing a timestamp keep their batch order.
func mergeRecent(batches ...[]map[string]interface{}) []map[string]interface{} {
	merged := make([]map[string]interface{}, 0, len(batches)*perCollectionLimit)
	for _, batch := range batches {
		merged = append(merged, batch...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return timestampOf(merged[i]) > timestampOf(merged[j])
	})

	if len(merged) > maxReturned {
		merged = merged[:maxReturned]
	}
	return merged
}

func timestampOf(record map[string]interface{}) string {
	switch v := record["timestamp"].(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case primitiveDateTimeLike:
		return v.Time().UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// primitiveDateTimeLike matches bson's primitive.DateTime without naming
// the concrete type at every call site.
type primitiveDateTimeLike interface {
	Time() time.Time
}

// Sanitize normalizes and bounds a record before persistence: timestamps
// become ISO-8601 UTC strings, every string field (recursively through
// additional_data) is truncated to 10,000 characters.
func Sanitize(record models.LogRecord) models.LogRecord {
	if record.Timestamp == "" {
		record.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	record.Timestamp = truncate(record.Timestamp)
	record.Endpoint = truncate(record.Endpoint)
	record.Method = truncate(record.Method)
	record.Message = truncate(record.Message)

	if record.AdditionalData == nil {
		record.AdditionalData = map[string]interface{}{}
	} else {
		record.AdditionalData = sanitizeMap(record.AdditionalData)
	}
	return record
}

func sanitizeMap(data map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(data))
	for key, value := range data {
		clean[key] = sanitizeValue(value)
	}
	return clean
}

func sanitizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return truncate(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case map[string]interface{}:
		return sanitizeMap(v)
	case []interface{}:
		clean := make([]interface{}, len(v))
		for i, item := range v {
			clean[i] = sanitizeValue(item)
		}
		return clean
	default:
		return value
	}
}

func truncate(s string) string {
	if len(s) > maxStringLength {
		return s[:maxStringLength]
	}
	return s
}
