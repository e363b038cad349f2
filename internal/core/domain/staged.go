package domain

import (
	"encoding/json"
	"fmt"
)

// Metadata keys written into every staged envelope and inherited by chunks.
const (
	MetaSource     = "source"
	MetaFileHash   = "file_hash"
	MetaTotalPages = "total_pages"
	MetaParser     = "parser"
	MetaPageRange  = "page_range"
	MetaSection    = "section"
	MetaPosition   = "position"
)

// PageRange restricts conversion to an inclusive, 1-based page span.
type PageRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Validate checks the range is well formed.
func (r PageRange) Validate() error {
	if r.First < 1 || r.Last < r.First {
		return fmt.Errorf("%w: page range %d-%d", ErrInvalidInput, r.First, r.Last)
	}
	return nil
}

// String formats the range as "first-last".
func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}

// DocumentMetadata is the typed part of a staged envelope.
// Unknown keys survive a read/write cycle through Extra.
type DocumentMetadata struct {
	// Source is the original file name.
	Source string

	// Fingerprint is the content hash of the source file.
	Fingerprint Fingerprint

	// TotalPages is the page count reported by the converter.
	TotalPages int

	// Parser identifies the converter configuration.
	Parser string

	// PageRange is set when only part of the document was converted.
	PageRange *PageRange

	// Extra holds any additional keys.
	Extra map[string]any
}

// Validate checks the required fields.
func (m DocumentMetadata) Validate() error {
	switch {
	case m.Source == "":
		return fmt.Errorf("%w: metadata missing %s", ErrInvalidInput, MetaSource)
	case !m.Fingerprint.IsValid():
		return fmt.Errorf("%w: metadata has invalid %s %q", ErrInvalidInput, MetaFileHash, m.Fingerprint)
	case m.Parser == "":
		return fmt.Errorf("%w: metadata missing %s", ErrInvalidInput, MetaParser)
	case m.TotalPages < 0:
		return fmt.Errorf("%w: negative %s", ErrInvalidInput, MetaTotalPages)
	}
	if m.PageRange != nil {
		return m.PageRange.Validate()
	}
	return nil
}

// Map flattens the metadata into a single map, typed keys last so Extra
// can never shadow them.
func (m DocumentMetadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+5)
	for k, v := range m.Extra {
		out[k] = v
	}
	out[MetaSource] = m.Source
	out[MetaFileHash] = m.Fingerprint.String()
	out[MetaTotalPages] = m.TotalPages
	out[MetaParser] = m.Parser
	if m.PageRange != nil {
		out[MetaPageRange] = m.PageRange.String()
	}
	return out
}

// MarshalJSON writes the metadata as one flat object.
func (m DocumentMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+5)
	for k, v := range m.Extra {
		out[k] = v
	}
	out[MetaSource] = m.Source
	out[MetaFileHash] = m.Fingerprint
	out[MetaTotalPages] = m.TotalPages
	out[MetaParser] = m.Parser
	if m.PageRange != nil {
		out[MetaPageRange] = m.PageRange
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat object, routing unknown keys into Extra.
func (m *DocumentMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = DocumentMetadata{}
	fields := map[string]any{
		MetaSource:     &m.Source,
		MetaFileHash:   &m.Fingerprint,
		MetaTotalPages: &m.TotalPages,
		MetaParser:     &m.Parser,
		MetaPageRange:  &m.PageRange,
	}
	for key, value := range raw {
		if dst, ok := fields[key]; ok {
			if err := json.Unmarshal(value, dst); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[key] = v
	}
	return nil
}

// StagedDocument is one entry of a staged artifact: cleaned text plus
// the metadata every derived chunk inherits.
type StagedDocument struct {
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
}

// Validate checks the envelope is usable for indexing.
func (d StagedDocument) Validate() error {
	if d.Text == "" {
		return fmt.Errorf("%w: staged document has empty text", ErrInvalidInput)
	}
	return d.Metadata.Validate()
}
