package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/sutinse/ai-analysis-api/internal/errors"
	"github.com/sutinse/ai-analysis-api/pkg/validation"
)

// DefaultMaxTextLength is the ceiling for direct text input, in characters.
const DefaultMaxTextLength = 100_000

// InstructionSourceCustom is reported when the caller supplied its own instruction.
const InstructionSourceCustom = "custom"

// InputKind identifies which content source a request carries
type InputKind string

const (
	InputKindText   InputKind = "text"
	InputKindFile   InputKind = "file"
	InputKindWebURL InputKind = "web_url"
)

// ResponseFormat selects how the boundary serializes a result
type ResponseFormat int

const (
	ResponseFormatText ResponseFormat = 0
	ResponseFormatJSON ResponseFormat = 1
)

// String returns the wire name of the format
func (f ResponseFormat) String() string {
	if f == ResponseFormatJSON {
		return "json"
	}
	return "text"
}

// UploadedFile is a file read from the multipart body.
// Size is the size declared by the client, which the content resolver checks before parsing.
type UploadedFile struct {
	Filename string
	Content  []byte
	Size     int64
}

// RequestParams carries raw inbound fields before validation
type RequestParams struct {
	Text               string
	File               *UploadedFile
	WebURL             string
	NamedInstructionID string
	CustomInstruction  string
	ResponseFormat     int
}

type requestOptions struct {
	maxTextLength int
}

// RequestOption tunes request construction
type RequestOption func(*requestOptions)

// WithMaxTextLength overrides DefaultMaxTextLength. Non-positive values are ignored.
func WithMaxTextLength(n int) RequestOption {
	return func(o *requestOptions) {
		if n > 0 {
			o.maxTextLength = n
		}
	}
}

// AnalysisRequest is a validated, immutable analysis request.
// Obtain one through NewAnalysisRequest.
type AnalysisRequest struct {
	text               string
	file               *UploadedFile
	webURL             string
	namedInstructionID string
	customInstruction  string
	responseFormat     ResponseFormat
	inputKind          InputKind
}

// NewAnalysisRequest validates params and returns the request, or a validation error
// naming the first violated rule.
func NewAnalysisRequest(p RequestParams, opts ...RequestOption) (*AnalysisRequest, error) {
	o := requestOptions{maxTextLength: DefaultMaxTextLength}
	for _, opt := range opts {
		opt(&o)
	}

	hasText := !isBlank(p.Text)
	hasFile := p.File != nil
	hasURL := !isBlank(p.WebURL)

	sources := 0
	for _, present := range []bool{hasText, hasFile, hasURL} {
		if present {
			sources++
		}
	}
	if sources != 1 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("exactly one content source must be provided (text, file or webUrl), got %d", sources), nil)
	}

	if isBlank(p.NamedInstructionID) && isBlank(p.CustomInstruction) {
		return nil, apperrors.NewValidationError(
			"either systemMessageId or customSystemMessage must be provided", nil)
	}

	if p.ResponseFormat != int(ResponseFormatText) && p.ResponseFormat != int(ResponseFormatJSON) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("responseFormat must be 0 (text) or 1 (json), got %d", p.ResponseFormat), nil)
	}

	req := &AnalysisRequest{
		namedInstructionID: strings.TrimSpace(p.NamedInstructionID),
		customInstruction:  p.CustomInstruction,
		responseFormat:     ResponseFormat(p.ResponseFormat),
	}

	switch {
	case hasText:
		if n := utf8.RuneCountInString(p.Text); n > o.maxTextLength {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("text exceeds maximum length of %d characters (got %d)", o.maxTextLength, n), nil)
		}
		req.text = p.Text
		req.inputKind = InputKindText
	case hasFile:
		file := *p.File
		req.file = &file
		req.inputKind = InputKindFile
	case hasURL:
		webURL := strings.TrimSpace(p.WebURL)
		if err := validation.NewURLValidator().ValidateWebURL(webURL); err != nil {
			msg := "webUrl is invalid"
			if appErr, ok := apperrors.As(err); ok {
				msg = "webUrl is invalid: " + appErr.Message
			}
			return nil, apperrors.NewValidationError(msg, err)
		}
		req.webURL = webURL
		req.inputKind = InputKindWebURL
	}

	return req, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Text returns the direct text content, empty unless InputKind is text
func (r *AnalysisRequest) Text() string { return r.text }

// File returns the uploaded file, nil unless InputKind is file
func (r *AnalysisRequest) File() *UploadedFile { return r.file }

// WebURL returns the URL to fetch, empty unless InputKind is web_url
func (r *AnalysisRequest) WebURL() string { return r.webURL }

func (r *AnalysisRequest) NamedInstructionID() string { return r.namedInstructionID }

func (r *AnalysisRequest) CustomInstruction() string { return r.customInstruction }

func (r *AnalysisRequest) ResponseFormat() ResponseFormat { return r.responseFormat }

// InputKind reports which content source is populated
func (r *AnalysisRequest) InputKind() InputKind { return r.inputKind }

// HasCustomInstruction reports whether a non-blank custom instruction was supplied
func (r *AnalysisRequest) HasCustomInstruction() bool { return !isBlank(r.customInstruction) }

// InstructionSource is "custom" when the custom instruction wins, otherwise the named id
func (r *AnalysisRequest) InstructionSource() string {
	if r.HasCustomInstruction() {
		return InstructionSourceCustom
	}
	return r.namedInstructionID
}

// AnalysisResult is the outcome of one successful analysis.
// It is created once by the analysis service and never modified.
type AnalysisResult struct {
	ID                string
	Timestamp         time.Time
	ResultText        string
	InputKind         InputKind
	InstructionSource string
	Format            ResponseFormat
}
