package models

// ChunkMetadata is the provenance metadata carried by every indexed chunk.
// Assigned once at chunking time and never mutated after persistence.
type ChunkMetadata struct {
	ChunkID      string `bson:"chunk_id" json:"chunk_id"`
	DocumentName string `bson:"document_name" json:"document_name"`
	UploadTime   string `bson:"upload_time" json:"upload_time"`
	CreationDate string `bson:"creation_date" json:"creation_date"`
	TotalPages   int    `bson:"total_pages" json:"total_pages"`
}

// Chunk is a bounded span of extracted document text with its metadata.
type Chunk struct {
	Text     string        `bson:"text" json:"text"`
	Metadata ChunkMetadata `bson:"metadata" json:"metadata"`
}

// Citation points back to the source chunk supporting part of an answer.
type Citation struct {
	DocumentName string `json:"document_name"`
	ChunkID      string `json:"chunk_id"`
}

// QueryResult is the parsed outcome of one answer-generation pass.
// Failures during generation are encoded in Answer rather than returned
// as errors, so the shape is the same on every path.
type QueryResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// RetrievedChunk is the preview of one retrieved chunk recorded in the
// query log payload. Content is truncated before logging.
type RetrievedChunk struct {
	Content      string        `json:"content"`
	Metadata     ChunkMetadata `json:"metadata"`
	DocumentName string        `json:"document_name"`
	ChunkID      string        `json:"chunk_id"`
}
