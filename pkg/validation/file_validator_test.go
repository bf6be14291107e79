package validation

import (
	"strings"
	"testing"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
)

func TestNewFileValidator(t *testing.T) {
	validator := NewFileValidator()
	if validator.maxSize != 50_000_000 {
		t.Errorf("Expected default max size 50000000, got %d", validator.maxSize)
	}
	if len(validator.allowedExtensions) != 5 {
		t.Errorf("Expected 5 allowed extensions, got %v", validator.allowedExtensions)
	}
}

func TestValidateUpload(t *testing.T) {
	validator := NewFileValidator()

	tests := []struct {
		name          string
		filename      string
		size          int64
		expectError   bool
		errorContains string
	}{
		{name: "java source", filename: "Main.java", size: 1024},
		{name: "plain text", filename: "notes.txt", size: 10},
		{name: "pdf", filename: "report.pdf", size: 2_000_000},
		{name: "docx", filename: "letter.docx", size: 30_000},
		{name: "pptx", filename: "deck.pptx", size: 30_000},
		{name: "upper case extension", filename: "REPORT.PDF", size: 100},
		{name: "exactly at ceiling", filename: "big.txt", size: 50_000_000},
		{name: "executable", filename: "malware.exe", size: 100, expectError: true, errorContains: "file type not allowed"},
		{name: "extension only in middle", filename: "report.pdf.exe", size: 100, expectError: true, errorContains: "file type not allowed"},
		{name: "no name", filename: "", size: 100, expectError: true, errorContains: "must have a name"},
		{name: "oversized allowed type", filename: "huge.pdf", size: 60_000_000, expectError: true, errorContains: "file too large"},
		{name: "oversized disallowed type", filename: "huge.bin", size: 60_000_000, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateUpload(tt.filename, tt.size)
			if !tt.expectError {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error, but got none")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeContentRejected) {
				t.Errorf("Expected content_rejected error, got %v", err)
			}
			if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
			}
		})
	}
}

func TestNewFileValidatorWithOptions(t *testing.T) {
	validator := NewFileValidatorWithOptions([]string{".MD"}, 0)
	if !validator.IsAllowedFileType("readme.md") {
		t.Error("Expected custom extension to be matched case-insensitively")
	}
	if validator.maxSize != DefaultMaxFileSize {
		t.Errorf("Expected non-positive max size to fall back to default, got %d", validator.maxSize)
	}
}
