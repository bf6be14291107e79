package factory

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sutinse/ai-analysis-api/internal/extractor"
	"github.com/sutinse/ai-analysis-api/internal/storage"
)

// DocumentType represents the supported upload formats
type DocumentType string

const (
	// PlainTextDocument covers .txt and .java sources
	PlainTextDocument DocumentType = "text"
	PDFDocument       DocumentType = "pdf"
	WordDocument      DocumentType = "docx"
	SlidesDocument    DocumentType = "pptx"
)

// StorageType represents different page storage backends
type StorageType string

const (
	// HTTPStorage fetches pages over HTTP(S)
	HTTPStorage StorageType = "http"
)

var documentTypes = map[string]DocumentType{
	".txt":  PlainTextDocument,
	".java": PlainTextDocument,
	".pdf":  PDFDocument,
	".docx": WordDocument,
	".pptx": SlidesDocument,
}

// ExtractorFactory creates document extractors
type ExtractorFactory interface {
	CreateExtractor(filename string) (extractor.Extractor, error)
}

// StorageFactory creates page fetchers
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.PageFetcher, error)
}

// DocumentTypeFor maps a filename to its document type by case-insensitive extension
func DocumentTypeFor(filename string) (DocumentType, bool) {
	t, ok := documentTypes[strings.ToLower(filepath.Ext(filename))]
	return t, ok
}

// extractorFactory implements ExtractorFactory.
// Extractors are stateless, so one instance per type is shared.
type extractorFactory struct {
	extractors map[DocumentType]extractor.Extractor
}

// NewExtractorFactory creates a new extractor factory
func NewExtractorFactory() ExtractorFactory {
	return &extractorFactory{
		extractors: map[DocumentType]extractor.Extractor{
			PlainTextDocument: extractor.NewPlainTextExtractor(),
			PDFDocument:       extractor.NewPDFExtractor(),
			WordDocument:      extractor.NewDocxExtractor(),
			SlidesDocument:    extractor.NewPptxExtractor(),
		},
	}
}

// CreateExtractor returns the extractor for filename's extension
func (f *extractorFactory) CreateExtractor(filename string) (extractor.Extractor, error) {
	docType, ok := DocumentTypeFor(filename)
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(filename))
	}
	return f.extractors[docType], nil
}

// storageFactory implements StorageFactory
type storageFactory struct {
	fetchTimeout time.Duration
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(fetchTimeout time.Duration) StorageFactory {
	return &storageFactory{fetchTimeout: fetchTimeout}
}

// CreateStorage creates a page fetcher based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.PageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPPageFetcher(f.fetchTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ExtractorFactory ExtractorFactory
	StorageFactory   StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(fetchTimeout time.Duration) *ComponentFactory {
	return &ComponentFactory{
		ExtractorFactory: NewExtractorFactory(),
		StorageFactory:   NewStorageFactory(fetchTimeout),
	}
}
