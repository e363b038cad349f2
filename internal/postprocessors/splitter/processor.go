// Package splitter caps chunk size by splitting at paragraph boundaries.
package splitter

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Name is the registry name of this processor.
const Name = "splitter"

// Processor splits chunks longer than maxChars runes. Paragraphs are packed
// greedily; a single paragraph over the limit is cut into fixed windows
// that overlap by overlap runes.
type Processor struct {
	maxChars int
	overlap  int
}

var _ driven.PostProcessor = (*Processor)(nil)

// Option configures the splitter.
type Option func(*Processor)

// WithMaxChars sets the maximum chunk length in runes.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// WithOverlap sets the overlap between hard-split windows in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChars: domain.DefaultMaxChunkChars,
		overlap:  domain.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed the window
	if p.overlap >= p.maxChars {
		p.overlap = p.maxChars / 4
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process splits oversized chunks and renumbers the result so positions
// and IDs stay contiguous. With no incoming chunks the whole document is
// treated as one chunk.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chunks == nil {
		if strings.TrimSpace(doc.Content) == "" {
			return nil, nil
		}
		chunks = []domain.Chunk{{
			DocumentID: doc.ID,
			Content:    strings.TrimSpace(doc.Content),
			Metadata:   doc.Metadata,
		}}
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		for _, piece := range p.split(c.Content) {
			pos := len(out)
			meta := domain.CloneMetadata(c.Metadata)
			meta[domain.MetaPosition] = pos
			out = append(out, domain.Chunk{
				ID:         domain.ChunkID(doc.ID, pos),
				DocumentID: doc.ID,
				Content:    piece,
				Position:   pos,
				Metadata:   meta,
			})
		}
	}
	return out, nil
}

func (p *Processor) split(text string) []string {
	if utf8.RuneCountInString(text) <= p.maxChars {
		return []string{text}
	}

	var (
		pieces []string
		cur    string
	)
	flush := func() {
		if cur != "" {
			pieces = append(pieces, cur)
			cur = ""
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := utf8.RuneCountInString(para)
		switch {
		case n > p.maxChars:
			flush()
			pieces = append(pieces, p.window(para)...)
		case cur == "":
			cur = para
		case utf8.RuneCountInString(cur)+2+n <= p.maxChars:
			cur += "\n\n" + para
		default:
			flush()
			cur = para
		}
	}
	flush()
	return pieces
}

// window cuts text into maxChars-rune windows advancing by maxChars-overlap.
func (p *Processor) window(text string) []string {
	runes := []rune(text)
	stride := p.maxChars - p.overlap
	var out []string
	for start := 0; start < len(runes); start += stride {
		end := start + p.maxChars
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, strings.TrimSpace(string(runes[start:end])))
		if end == len(runes) {
			break
		}
	}
	return out
}
