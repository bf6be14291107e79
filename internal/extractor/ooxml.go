package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// maxPartSize caps the decompressed size of a single XML part.
const maxPartSize = 100 << 20

// DocxExtractor extracts paragraph text from Word documents
type DocxExtractor struct{}

func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

func (e *DocxExtractor) Name() string { return "docx" }

func (e *DocxExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	zr, err := openPackage(data)
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			text, err := partText(f)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(text), nil
		}
	}
	return "", fmt.Errorf("%w: word/document.xml not found", ErrUnexpectedFormat)
}

// PptxExtractor extracts slide text from PowerPoint presentations, in slide order
type PptxExtractor struct{}

func NewPptxExtractor() *PptxExtractor {
	return &PptxExtractor{}
}

func (e *PptxExtractor) Name() string { return "pptx" }

func (e *PptxExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	zr, err := openPackage(data)
	if err != nil {
		return "", err
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if n, ok := slideNumber(f.Name); ok {
			slides = append(slides, slide{num: n, file: f})
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: no slides found", ErrUnexpectedFormat)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	texts := make([]string, len(slides))
	errs := make([]error, len(slides))

	pool := NewWorkerPool(min(len(slides), runtime.NumCPU()))
	pool.Start()
	for i, s := range slides {
		i, f := i, s.file
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			texts[i], errs[i] = partText(f)
		})
	}
	pool.Wait()
	pool.Close()

	parts := make([]string, 0, len(slides))
	for i, text := range texts {
		if errs[i] != nil {
			return "", errs[i]
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// slideNumber parses ppt/slides/slideN.xml
func slideNumber(name string) (int, bool) {
	dir, file := path.Split(name)
	if dir != "ppt/slides/" || !strings.HasPrefix(file, "slide") || !strings.HasSuffix(file, ".xml") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(file, "slide"), ".xml"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func openPackage(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: not an Office Open XML package", ErrUnexpectedFormat)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return zr, nil
}

// partText collects <w:t>/<a:t> runs, breaking lines at paragraph ends.
func partText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptDocument, f.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, maxPartSize))
	var (
		buf    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrCorruptDocument, f.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteByte('\t')
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return buf.String(), nil
}
