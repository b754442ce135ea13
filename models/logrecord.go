package models

// LogRecord is one immutable, append-only request log entry. Timestamp is
// an ISO-8601 UTC string; string fields are truncated before persistence
// to bound record size.
type LogRecord struct {
	Timestamp      string                 `bson:"timestamp" json:"timestamp"`
	Endpoint       string                 `bson:"endpoint" json:"endpoint"`
	Method         string                 `bson:"method" json:"method"`
	StatusCode     int                    `bson:"status_code" json:"status_code"`
	Message        string                 `bson:"message" json:"message"`
	AdditionalData map[string]interface{} `bson:"additional_data" json:"additional_data"`
}
