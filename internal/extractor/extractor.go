// Package extractor turns uploaded documents into plain text.
package extractor

import (
	"context"
	"errors"
)

// Extractor converts raw document bytes to plain text
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
	Name() string
}

var (
	// ErrUnexpectedFormat indicates the bytes do not match the declared document type
	ErrUnexpectedFormat = errors.New("content does not match the declared document type")

	// ErrCorruptDocument indicates the document could not be parsed
	ErrCorruptDocument = errors.New("document is corrupt or unreadable")
)
