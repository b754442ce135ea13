package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"academiqa-backend/internal/config"
	"academiqa-backend/internal/logger"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// FileStorageManager persists uploaded files under the configured
// directory, keyed by sanitized original filename.
type FileStorageManager struct {
	uploadDir string
}

func NewFileStorageManager(cfg *config.Config) *FileStorageManager {
	uploadDir := cfg.PDFStorageDir
	if uploadDir == "" {
		uploadDir = "./storage/pdfs"
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", "dir", uploadDir, "error", err)
	}

	return &FileStorageManager{uploadDir: uploadDir}
}

// Save writes the uploaded file under its sanitized name and returns the
// stored filename and full path. Re-uploading the same name overwrites
// the stored file; the indexed chunks are appended separately.
func (fsm *FileStorageManager) Save(file multipart.File, originalName string) (string, string, error) {
	filename := SanitizeFilename(originalName)
	path := filepath.Join(fsm.uploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	return filename, path, nil
}

// SanitizeFilename strips path components and replaces anything outside
// [A-Za-z0-9_.-] so the name is safe as a storage key.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload.pdf"
	}
	return name
}
