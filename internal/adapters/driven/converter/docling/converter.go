// Package docling converts PDFs through a docling-serve instance.
package docling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.DocumentConverter = (*Converter)(nil)

// Default configuration values.
const (
	DefaultTimeout = 10 * time.Minute
	convertPath    = "/v1/convert/file"
)

// Config holds configuration for the docling converter.
type Config struct {
	// BaseURL is the docling-serve base URL (default: http://localhost:5001).
	BaseURL string

	// Timeout bounds one conversion. Large scanned contracts are slow.
	Timeout time.Duration

	// OCR enables OCR for scanned pages.
	OCR bool
}

// Converter posts files to docling-serve and reads back markdown.
type Converter struct {
	client  *http.Client
	baseURL string
	ocr     bool
}

// New creates a docling converter.
func New(cfg Config) *Converter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultDoclingURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Converter{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ocr:     cfg.OCR,
	}
}

// Name returns the converter name.
func (c *Converter) Name() string {
	return "docling"
}

type convertResponse struct {
	Document struct {
		MDContent   string `json:"md_content"`
		JSONContent struct {
			Pages map[string]json.RawMessage `json:"pages"`
		} `json:"json_content"`
	} `json:"document"`
	Status string   `json:"status"`
	Errors []string `json:"errors"`
}

// Convert uploads the file and returns its markdown export.
func (c *Converter) Convert(ctx context.Context, path string, opts domain.ConvertOptions) (*domain.ConversionResult, error) {
	body, contentType, err := c.buildForm(path, opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: docling request: %v", domain.ErrParse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: docling returned status %d: %s",
			domain.ErrParse, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding docling response: %v", domain.ErrParse, err)
	}
	if result.Status != "" && result.Status != "success" {
		return nil, fmt.Errorf("%w: docling status %s: %s",
			domain.ErrParse, result.Status, strings.Join(result.Errors, "; "))
	}
	if strings.TrimSpace(result.Document.MDContent) == "" {
		return nil, fmt.Errorf("%w: no text extracted from %s", domain.ErrParse, path)
	}

	return &domain.ConversionResult{
		Markdown: result.Document.MDContent,
		Pages:    len(result.Document.JSONContent.Pages),
		Parser:   c.Name(),
	}, nil
}

func (c *Converter) buildForm(path string, opts domain.ConvertOptions) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", domain.ErrParse, path, err)
	}

	fields := [][2]string{
		{"to_formats", "md"},
		{"to_formats", "json"},
		{"do_ocr", strconv.FormatBool(c.ocr)},
		{"image_export_mode", "placeholder"},
	}
	if pr := opts.PageRange; pr != nil {
		if err := pr.Validate(); err != nil {
			return nil, "", err
		}
		fields = append(fields,
			[2]string{"page_range", strconv.Itoa(pr.First)},
			[2]string{"page_range", strconv.Itoa(pr.Last)})
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("writing form field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
