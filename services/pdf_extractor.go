package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"academiqa-backend/utils"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// ExtractedDocument is a document already split into ordered pages plus
// the document-level metadata the chunker copies onto every chunk.
type ExtractedDocument struct {
	Pages        []Page
	TotalPages   int
	CreationDate string // "Unknown" when the PDF carries no creation date
}

// PDFExtractor loads PDF files and extracts their text page by page.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages extracts text from every readable page of the file at
// filePath. Fails with a ProcessingError when the file cannot be loaded
// (corrupt file, unsupported format, unreadable path).
func (e *PDFExtractor) ExtractPages(ctx context.Context, filePath string) (*ExtractedDocument, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return nil, utils.NewProcessingError("Error processing PDF", ctx.Err())
		}
	}

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, utils.NewProcessingError("Error processing PDF", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	doc := &ExtractedDocument{
		TotalPages:   totalPages,
		CreationDate: extractCreationDate(reader),
	}

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page is not fatal
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
	}

	if len(doc.Pages) == 0 {
		return nil, utils.NewProcessingError("Error processing PDF", fmt.Errorf("no text extracted from %d pages", totalPages))
	}

	return doc, nil
}

func extractCreationDate(reader *pdf.Reader) (date string) {
	date = "Unknown"
	defer func() {
		// The pdf library panics on some malformed trailers
		recover()
	}()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return date
	}
	created := info.Key("CreationDate")
	if created.IsNull() {
		return date
	}
	if s := created.RawString(); s != "" {
		date = s
	}
	return date
}
