package validation

import (
	"fmt"
	"strings"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
)

// DefaultMaxFileSize is the largest upload the extractor is handed, in bytes.
const DefaultMaxFileSize int64 = 50_000_000

// DefaultAllowedExtensions lists the document types the extractors understand.
var DefaultAllowedExtensions = []string{".java", ".txt", ".pdf", ".docx", ".pptx"}

// FileValidator rejects uploads by name and declared size before any parsing happens.
type FileValidator struct {
	allowedExtensions []string
	maxSize           int64
}

// NewFileValidator creates a file validator with the default extension list and size ceiling
func NewFileValidator() *FileValidator {
	return NewFileValidatorWithOptions(DefaultAllowedExtensions, DefaultMaxFileSize)
}

// NewFileValidatorWithOptions creates a file validator with custom limits.
// A non-positive maxSize falls back to DefaultMaxFileSize.
func NewFileValidatorWithOptions(extensions []string, maxSize int64) *FileValidator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	lowered := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		lowered = append(lowered, strings.ToLower(ext))
	}
	return &FileValidator{
		allowedExtensions: lowered,
		maxSize:           maxSize,
	}
}

// ValidateUpload checks the filename suffix and the declared size.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.NewContentRejectedError("uploaded file must have a name", nil)
	}

	if !v.IsAllowedFileType(filename) {
		return apperrors.NewContentRejectedError(
			fmt.Sprintf("file type not allowed, supported types: %s", strings.Join(v.allowedExtensions, ", ")), nil)
	}

	if size < 0 {
		return apperrors.NewContentRejectedError("file size is invalid", nil)
	}

	if size > v.maxSize {
		return apperrors.NewContentRejectedError(
			fmt.Sprintf("file too large: %d bytes (max %d)", size, v.maxSize), nil)
	}

	return nil
}

// IsAllowedFileType reports whether the filename ends with an allowed extension (case-insensitive)
func (v *FileValidator) IsAllowedFileType(filename string) bool {
	lower := strings.ToLower(strings.TrimSpace(filename))
	for _, ext := range v.allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
