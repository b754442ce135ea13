package services

import (
	"fmt"
	"strings"
	"time"

	"academiqa-backend/models"
)

// Chunker splits extracted page text into overlapping fixed-size chunks.
// Sizes are measured in characters, not tokens; splitting is a naive
// sliding window with no awareness of sentence or paragraph boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkDocument produces the ordered chunk sequence for one document.
// Every chunk carries its zero-based ordinal, the document base name, the
// current UTC timestamp, the document creation date and total page count.
func (c *Chunker) ChunkDocument(doc *ExtractedDocument, documentName string) []models.Chunk {
	var sb strings.Builder
	for i, page := range doc.Pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(page.Text)
	}

	pieces := c.split(sb.String())
	uploadTime := time.Now().UTC().Format(time.RFC3339)

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			Text: piece,
			Metadata: models.ChunkMetadata{
				ChunkID:      fmt.Sprintf("chunk_%d", i),
				DocumentName: documentName,
				UploadTime:   uploadTime,
				CreationDate: doc.CreationDate,
				TotalPages:   doc.TotalPages,
			},
		})
	}
	return chunks
}

func (c *Chunker) split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	var pieces []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			pieces = append(pieces, piece)
		}

		if end == len(runes) {
			break
		}
	}
	return pieces
}
