package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PdfRecord is the metadata stored for an uploaded file. Created once at
// upload time, never mutated.
type PdfRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Filename   string             `bson:"filename" json:"filename"`
	Filepath   string             `bson:"filepath" json:"filepath"`
	Chunks     int                `bson:"chunks" json:"chunks"`
	UploadTime string             `bson:"upload_time" json:"upload_time"`
}

// UploadData is the data payload of a successful upload response.
type UploadData struct {
	RecordID        string `json:"record_id"`
	ChunksProcessed int    `json:"chunks_processed"`
}
