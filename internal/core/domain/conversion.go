package domain

// ConvertOptions configures a single document conversion.
type ConvertOptions struct {
	// PageRange limits conversion to a span of pages. Nil converts all.
	PageRange *PageRange
}

// ConversionResult is the output of a document converter.
type ConversionResult struct {
	// Markdown is the structured text of the document.
	Markdown string

	// Pages is the number of pages in the source document.
	Pages int

	// Parser names the converter that produced the result.
	Parser string
}
