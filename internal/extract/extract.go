// Package extract pulls plain text out of uploaded report documents.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyDocument = errors.New("document is empty")

type TextExtractor interface {
	ExtractText(ctx context.Context, document []byte) (string, error)
}

// PDFExtractor reads the text layer of every page and joins the pages with spaces.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (extractor *PDFExtractor) ExtractText(ctx context.Context, document []byte) (text string, err error) {
	if len(document) == 0 {
		return "", ErrEmptyDocument
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if recovered := recover(); recovered != nil {
			text = ""
			err = fmt.Errorf("parse pdf: %v", recovered)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for index := 1; index <= reader.NumPage(); index++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(index)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", index, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, " "), nil
}
