package driven

import (
	"context"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// DocumentConverter turns a source document into structured text with
// headings preserved. Failures are wrapped in domain.ErrParse.
type DocumentConverter interface {
	// Convert reads the document at path.
	Convert(ctx context.Context, path string, opts domain.ConvertOptions) (*domain.ConversionResult, error)

	// Name identifies the converter.
	Name() string
}

// TextCleaner removes boilerplate from converted text.
type TextCleaner interface {
	// Clean returns the cleaned text.
	Clean(text string) string
}
