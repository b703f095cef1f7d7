package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrMalformed is returned when the bytes cannot be decoded as a PDF.
var ErrMalformed = errors.New("pdf: malformed document")

// Extraction is the plain text recovered from a document.
type Extraction struct {
	// Text is every page's text in page order, joined by newlines and trimmed.
	Text string
	// Pages is the number of pages in the document.
	Pages int
	// EmptyPages counts pages that produced no text.
	EmptyPages int
}

// Extractor turns PDF bytes into plain text. It holds no state and is safe
// for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes content and returns its text page by page. Pages that
// produce no text contribute nothing. The context is checked between pages
// so a deadline bounds large documents. Any decoder failure, including a
// panic inside the PDF library, is reported as ErrMalformed.
func (e *Extractor) Extract(ctx context.Context, content []byte) (result *Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: decoder panic: %v", ErrMalformed, r)
		}
	}()

	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var sb strings.Builder
	out := &Extraction{Pages: reader.NumPage()}

	for i := 1; i <= out.Pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			out.EmptyPages++
			continue
		}

		// A nil font map makes the library resolve fonts from the page itself.
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrMalformed, i, err)
		}
		if text == "" {
			out.EmptyPages++
			continue
		}

		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	out.Text = strings.TrimSpace(sb.String())
	return out, nil
}
