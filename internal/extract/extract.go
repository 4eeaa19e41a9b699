package extract

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmptyText means the document yielded no usable text, for example a
// scanned image-only PDF.
var ErrEmptyText = errors.New("no text extracted from document")

// ErrUnsupportedFormat means no extractor handles the document type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// TextExtractor turns a downloaded document into plain text. Implementations
// exist per format; binary formats delegate to external tooling.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// PlainText handles text/plain documents and anything already valid UTF-8.
type PlainText struct{}

func (PlainText) Extract(_ context.Context, data []byte, contentType string) (string, error) {
	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)

	if ct != "" && ct != "text/plain" && ct != "text/markdown" {
		return "", ErrUnsupportedFormat
	}
	if !utf8.Valid(data) {
		return "", ErrUnsupportedFormat
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// Chain tries each extractor in order, returning the first success. Format
// mismatches fall through; real failures stop the chain.
type Chain []TextExtractor

func (c Chain) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	for _, e := range c {
		text, err := e.Extract(ctx, data, contentType)
		if errors.Is(err, ErrUnsupportedFormat) {
			continue
		}
		return text, err
	}
	return "", ErrUnsupportedFormat
}
