// Package sections splits markdown documents into one chunk per heading.
package sections

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Name is the registry name of this processor.
const Name = "sections"

// PathSeparator joins nested heading titles in the section metadata.
const PathSeparator = " > "

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)

// Processor creates chunks from markdown sections. Text before the first
// heading becomes its own section with no section path. Headings inside
// fenced code blocks are ignored.
type Processor struct{}

var _ driven.PostProcessor = (*Processor)(nil)

// New creates a section processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

type heading struct {
	level int
	title string
}

// Process ignores incoming chunks and creates one chunk per non-blank
// section, in document order. Each chunk inherits the document metadata
// plus its section path and position.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	var (
		chunks  []domain.Chunk
		stack   []heading
		path    string
		current strings.Builder
		inFence bool
	)

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text == "" {
			return
		}
		pos := len(chunks)
		meta := domain.CloneMetadata(doc.Metadata)
		if path != "" {
			meta[domain.MetaSection] = path
		}
		meta[domain.MetaPosition] = pos
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, pos),
			DocumentID: doc.ID,
			Content:    text,
			Position:   pos,
			Metadata:   meta,
		})
	}

	for _, line := range strings.Split(doc.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingPattern.FindStringSubmatch(line); m != nil && m[2] != "" {
				flush()
				level := len(m[1])
				for len(stack) > 0 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				stack = append(stack, heading{level: level, title: m[2]})
				path = joinPath(stack)
			}
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()

	return chunks, nil
}

func joinPath(stack []heading) string {
	titles := make([]string, len(stack))
	for i, h := range stack {
		titles[i] = h.title
	}
	return strings.Join(titles, PathSeparator)
}
