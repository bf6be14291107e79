// Package content turns an analysis request into the plain text sent to the model.
package content

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/internal/factory"
	"github.com/sutinse/ai-analysis-api/internal/logger"
	"github.com/sutinse/ai-analysis-api/internal/storage"
	"github.com/sutinse/ai-analysis-api/pkg/models"
	"github.com/sutinse/ai-analysis-api/pkg/validation"
)

const (
	// DefaultMaxWebContentLength caps extracted page text, in characters
	DefaultMaxWebContentLength = 1_000_000

	// TruncationMarker is appended to page text cut at the length cap
	TruncationMarker = "\n\n[content truncated]"
)

// nonContentSelector lists elements whose text never reaches the model
const nonContentSelector = "script, style, noscript, template, iframe, svg, nav, footer, header, aside"

// ContentStrategy resolves one kind of input to text
type ContentStrategy interface {
	Resolve(ctx context.Context, req *models.AnalysisRequest) (string, error)
	GetStrategyName() string
}

// TextStrategy passes direct text through unchanged
type TextStrategy struct{}

func NewTextStrategy() ContentStrategy {
	return &TextStrategy{}
}

func (s *TextStrategy) Resolve(_ context.Context, req *models.AnalysisRequest) (string, error) {
	return req.Text(), nil
}

func (s *TextStrategy) GetStrategyName() string {
	return "text"
}

// FileStrategy checks an upload and extracts its text
type FileStrategy struct {
	validator  *validation.FileValidator
	extractors factory.ExtractorFactory
}

// NewFileStrategy creates a file strategy
func NewFileStrategy(validator *validation.FileValidator, extractors factory.ExtractorFactory) ContentStrategy {
	return &FileStrategy{
		validator:  validator,
		extractors: extractors,
	}
}

// Resolve rejects disallowed uploads before any parsing happens
func (s *FileStrategy) Resolve(ctx context.Context, req *models.AnalysisRequest) (string, error) {
	file := req.File()
	if file == nil {
		return "", apperrors.NewContentRejectedError("no file was uploaded", nil)
	}

	if err := s.validator.ValidateUpload(file.Filename, file.Size); err != nil {
		return "", err
	}

	ext, err := s.extractors.CreateExtractor(file.Filename)
	if err != nil {
		return "", apperrors.NewContentRejectedError("file type not supported", err)
	}

	text, err := ext.Extract(ctx, file.Content)
	if err != nil {
		return "", apperrors.NewExtractionError(
			fmt.Sprintf("failed to extract text from %s", file.Filename), err)
	}

	logger.WithFields(logrus.Fields{
		"filename":  file.Filename,
		"extractor": ext.Name(),
		"chars":     utf8.RuneCountInString(text),
	}).Debug("File content extracted")

	return text, nil
}

func (s *FileStrategy) GetStrategyName() string {
	return "file"
}

// WebStrategy fetches a page and keeps its visible text
type WebStrategy struct {
	fetcher      storage.PageFetcher
	urlValidator *validation.URLValidator
	maxLength    int
}

// NewWebStrategy creates a web strategy. maxLength <= 0 selects DefaultMaxWebContentLength.
func NewWebStrategy(fetcher storage.PageFetcher, urlValidator *validation.URLValidator, maxLength int) ContentStrategy {
	if maxLength <= 0 {
		maxLength = DefaultMaxWebContentLength
	}
	return &WebStrategy{
		fetcher:      fetcher,
		urlValidator: urlValidator,
		maxLength:    maxLength,
	}
}

func (s *WebStrategy) Resolve(ctx context.Context, req *models.AnalysisRequest) (string, error) {
	pageURL := req.WebURL()
	if err := s.urlValidator.ValidateWebURL(pageURL); err != nil {
		return "", err
	}

	doc, err := s.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return "", apperrors.NewFetchError("failed to fetch content from webUrl", err)
	}

	text := VisibleText(doc)
	truncated, cut := Truncate(text, s.maxLength)
	if cut {
		logger.WithFields(logrus.Fields{
			"url":   pageURL,
			"chars": utf8.RuneCountInString(text),
			"limit": s.maxLength,
		}).Warn("Web content truncated")
	}
	return truncated, nil
}

func (s *WebStrategy) GetStrategyName() string {
	return "web"
}

// VisibleText removes non-content elements and returns the body text with whitespace collapsed
func VisibleText(doc *goquery.Document) string {
	doc.Find(nonContentSelector).Remove()
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

// Truncate cuts text to max characters and appends TruncationMarker when it does
func Truncate(text string, max int) (string, bool) {
	if utf8.RuneCountInString(text) <= max {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:max]) + TruncationMarker, true
}
