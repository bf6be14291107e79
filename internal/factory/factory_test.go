package factory

import (
	"testing"
	"time"
)

func TestCreateExtractor(t *testing.T) {
	f := NewExtractorFactory()

	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"notes.txt", "plaintext", false},
		{"Main.JAVA", "plaintext", false},
		{"report.pdf", "pdf", false},
		{"letter.Docx", "docx", false},
		{"deck.pptx", "pptx", false},
		{"archive.tar.gz", "", true},
		{"noextension", "", true},
		{"sheet.xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			e, err := f.CreateExtractor(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Name() != tt.want {
				t.Errorf("Expected %s extractor, got %s", tt.want, e.Name())
			}
		})
	}
}

func TestCreateStorage(t *testing.T) {
	f := NewComponentFactory(time.Second)

	if _, err := f.StorageFactory.CreateStorage(HTTPStorage); err != nil {
		t.Errorf("Expected HTTP storage, got %v", err)
	}
	if _, err := f.StorageFactory.CreateStorage("azure"); err == nil {
		t.Error("Expected unsupported storage type to fail")
	}
}
