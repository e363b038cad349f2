// Package pdftotext converts PDFs with the poppler pdftotext tool.
//
// pdftotext produces plain text with a form feed after each page. The
// converter promotes contract headings (articles, schedules, numbered
// clause titles) to markdown headings so section chunking still works.
package pdftotext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Tool is the external binary this converter runs.
const Tool = "pdftotext"

// ErrToolNotFound indicates pdftotext is not installed.
var ErrToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Converter implements driven.DocumentConverter.
type Converter struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

var _ driven.DocumentConverter = (*Converter)(nil)

// New creates a converter that runs the installed pdftotext.
func New() *Converter {
	return &Converter{runner: execRunner{}, lookPath: exec.LookPath}
}

// NewWithRunner creates a converter with a custom runner and no PATH check.
func NewWithRunner(r CommandRunner) *Converter {
	return &Converter{runner: r}
}

// Name returns the converter name.
func (c *Converter) Name() string {
	return Tool
}

// InstallInstructions describes how to install the tool.
func InstallInstructions() string {
	return "Install poppler-utils: apt install poppler-utils (Debian/Ubuntu), " +
		"brew install poppler (macOS). Then check that 'pdftotext -v' works."
}

// Convert extracts the text of the PDF at path.
func (c *Converter) Convert(ctx context.Context, path string, opts domain.ConvertOptions) (*domain.ConversionResult, error) {
	if c.lookPath != nil {
		if _, err := c.lookPath(Tool); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfig, ErrToolNotFound)
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	args := []string{"-enc", "UTF-8"}
	if pr := opts.PageRange; pr != nil {
		if err := pr.Validate(); err != nil {
			return nil, err
		}
		args = append(args, "-f", strconv.Itoa(pr.First), "-l", strconv.Itoa(pr.Last))
	}
	args = append(args, path, "-")

	out, err := c.runner.Run(ctx, Tool, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: pdftotext failed: %v", domain.ErrParse, err)
	}

	pages := splitPages(string(out))
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no text extracted from %s", domain.ErrParse, path)
	}

	return &domain.ConversionResult{
		Markdown: ToMarkdown(strings.Join(pages, "\n\n")),
		Pages:    len(pages),
		Parser:   Tool,
	}, nil
}

// splitPages splits on form feeds and drops the empty tail pdftotext
// leaves after the last page. Blank pages in the middle are kept as
// empty strings so the page count stays right.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	for len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

var (
	// ARTICLE 5, SCHEDULE 2, ANNEX A, ANNEXE B, PART III, CHAPITRE 1 ...
	topHeading = regexp.MustCompile(`^(?:ARTICLE|ARTICLES|SCHEDULE|ANNEX|ANNEXE|APPENDIX|PART|CHAPTER|CHAPITRE|TITRE|SECTION)\s+[0-9IVXLCA-Z]+\b.*$`)

	// "1. DEFINITIONS AND INTERPRETATION", "12. FORCE MAJEURE"
	clauseHeading = regexp.MustCompile(`^\d{1,3}\.\s+\p{Lu}[\p{Lu}\d\s,;'’&/()-]{2,}$`)

	// "1.1 Definitions", "4.2 Délai de livraison"
	subClauseHeading = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.?\s+\p{Lu}[^.:;]{1,70}$`)
)

// ToMarkdown trims trailing spaces and promotes heading-like lines.
func ToMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			line = ""
		case topHeading.MatchString(trimmed):
			line = "# " + trimmed
		case clauseHeading.MatchString(trimmed):
			line = "## " + trimmed
		case subClauseHeading.MatchString(trimmed):
			line = "### " + trimmed
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
