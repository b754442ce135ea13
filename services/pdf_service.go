package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"academiqa-backend/internal/config"
	"academiqa-backend/internal/logger"
	"academiqa-backend/models"
	"academiqa-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PDFService runs the upload pipeline: store the file, extract its pages,
// chunk, embed, index, and record the upload in the pdfs collection.
type PDFService struct {
	config         *config.Config
	pdfsCollection *mongo.Collection
	extractor      *PDFExtractor
	chunker        *Chunker
	indexer        *Indexer
	storage        *FileStorageManager
}

func NewPDFService(cfg *config.Config, pdfsCollection *mongo.Collection, indexer *Indexer) *PDFService {
	return &PDFService{
		config:         cfg,
		pdfsCollection: pdfsCollection,
		extractor:      NewPDFExtractor(),
		chunker:        NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap),
		indexer:        indexer,
		storage:        NewFileStorageManager(cfg),
	}
}

// Process handles one validated upload end to end and returns the pdfs
// record ID plus the number of chunks indexed. There is no existence
// check before indexing: uploading the same file twice appends a second,
// independent set of chunks.
func (s *PDFService) Process(ctx context.Context, file multipart.File, originalName string) (string, int, error) {
	if !strings.HasSuffix(strings.ToLower(originalName), ".pdf") {
		return "", 0, utils.NewValidationError("Only PDF files are allowed")
	}

	filename, path, err := s.storage.Save(file, originalName)
	if err != nil {
		return "", 0, utils.NewProcessingError("Error processing PDF: could not store file", err)
	}

	doc, err := s.extractor.ExtractPages(ctx, path)
	if err != nil {
		return "", 0, err
	}

	chunks := s.chunker.ChunkDocument(doc, filename)
	if len(chunks) == 0 {
		return "", 0, utils.NewProcessingError("Error processing PDF", nil)
	}

	chunkCount, err := s.indexer.Index(ctx, chunks)
	if err != nil {
		return "", 0, err
	}

	record := models.PdfRecord{
		Filename:   filename,
		Filepath:   path,
		Chunks:     chunkCount,
		UploadTime: time.Now().UTC().Format(time.RFC3339),
	}
	res, err := s.pdfsCollection.InsertOne(ctx, record)
	if err != nil {
		return "", 0, utils.NewProcessingError("Error processing PDF: could not store metadata", err)
	}

	recordID := ""
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		recordID = oid.Hex()
	}

	logger.Info("PDF indexed", "filename", filename, "chunks", chunkCount, "record_id", recordID)
	return recordID, chunkCount, nil
}
