package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetadata() DocumentMetadata {
	return DocumentMetadata{
		Source:      "ppa_en.pdf",
		Fingerprint: validFP,
		TotalPages:  12,
		Parser:      "pdftotext_production_v1",
	}
}

func TestDocumentMetadata_MarshalJSON_Flat(t *testing.T) {
	meta := validMetadata()
	meta.Extra = map[string]any{"language": "en"}

	data, err := json.Marshal(meta)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "ppa_en.pdf", raw["source"])
	assert.Equal(t, validFP, raw["file_hash"])
	assert.Equal(t, float64(12), raw["total_pages"])
	assert.Equal(t, "pdftotext_production_v1", raw["parser"])
	assert.Equal(t, "en", raw["language"])
	assert.NotContains(t, raw, "page_range")
	assert.NotContains(t, raw, "Extra")
}

func TestDocumentMetadata_UnmarshalJSON_KeepsUnknownKeys(t *testing.T) {
	input := `{"source":"a.pdf","file_hash":"` + validFP + `","total_pages":3,` +
		`"parser":"docling_production_v1","page_range":{"first":1,"last":2},"jurisdiction":"FR"}`

	var meta DocumentMetadata
	require.NoError(t, json.Unmarshal([]byte(input), &meta))

	assert.Equal(t, "a.pdf", meta.Source)
	assert.Equal(t, Fingerprint(validFP), meta.Fingerprint)
	assert.Equal(t, 3, meta.TotalPages)
	require.NotNil(t, meta.PageRange)
	assert.Equal(t, PageRange{First: 1, Last: 2}, *meta.PageRange)
	assert.Equal(t, "FR", meta.Extra["jurisdiction"])
	assert.NoError(t, meta.Validate())
}

func TestDocumentMetadata_UnmarshalJSON_WrongType(t *testing.T) {
	var meta DocumentMetadata
	err := json.Unmarshal([]byte(`{"total_pages":"many"}`), &meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total_pages")
}

func TestDocumentMetadata_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DocumentMetadata)
	}{
		{"missing source", func(m *DocumentMetadata) { m.Source = "" }},
		{"bad hash", func(m *DocumentMetadata) { m.Fingerprint = "xyz" }},
		{"missing parser", func(m *DocumentMetadata) { m.Parser = "" }},
		{"negative pages", func(m *DocumentMetadata) { m.TotalPages = -1 }},
		{"bad range", func(m *DocumentMetadata) { m.PageRange = &PageRange{First: 5, Last: 2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMetadata()
			tt.mutate(&meta)
			err := meta.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	assert.NoError(t, validMetadata().Validate())
}

func TestDocumentMetadata_Map_TypedKeysWin(t *testing.T) {
	meta := validMetadata()
	meta.PageRange = &PageRange{First: 2, Last: 4}
	meta.Extra = map[string]any{"source": "spoofed", "clause": "7.1"}

	m := meta.Map()
	assert.Equal(t, "ppa_en.pdf", m[MetaSource])
	assert.Equal(t, validFP, m[MetaFileHash])
	assert.Equal(t, "2-4", m[MetaPageRange])
	assert.Equal(t, "7.1", m["clause"])
}

func TestStagedDocument_Validate(t *testing.T) {
	doc := StagedDocument{Text: "", Metadata: validMetadata()}
	assert.ErrorIs(t, doc.Validate(), ErrInvalidInput)

	doc.Text = "Article 1"
	assert.NoError(t, doc.Validate())
}
