package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainTextExtractor reads text files (.txt, .java) and returns them as UTF-8
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Name() string { return "plaintext" }

// Extract checks the content is text and decodes it from the detected charset.
// Without a detected charset the content must already be valid UTF-8.
func (e *PlainTextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	m := mimetype.Detect(data)
	if !isText(m) {
		return "", fmt.Errorf("%w: expected text", ErrUnexpectedFormat)
	}

	label := charsetOf(m)
	if label == "" || label == "utf-8" {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrCorruptDocument)
		}
		return string(data), nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: unsupported charset %q: %v", ErrCorruptDocument, label, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", ErrCorruptDocument, label, err)
	}
	return strings.TrimPrefix(string(decoded), "\uFEFF"), nil
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// charsetOf returns the lowercased charset parameter of the detected type, if any
func charsetOf(m *mimetype.MIME) string {
	_, params, err := mime.ParseMediaType(m.String())
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}
