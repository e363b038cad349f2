package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{20, 20},
		{int64(7), 7},
		{float64(3.9), 3},
		{" 42 ", 42},
		{"forty", 0},
		{true, 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Int(tt.in), "Int(%#v)", tt.in)
	}
}

func TestFloat(t *testing.T) {
	assert.InDelta(t, 0.1, Float(0.1), 1e-12)
	assert.InDelta(t, 0.1, Float("0.1"), 1e-12)
	assert.InDelta(t, 2.0, Float(int64(2)), 1e-12)
	assert.Equal(t, 0.0, Float("warm"))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(true))
	assert.True(t, Bool("true"))
	assert.True(t, Bool("1"))
	assert.False(t, Bool("nope"))
	assert.False(t, Bool(1))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".PDF"}, StringSlice([]any{".pdf", 3, ".PDF"}))
	assert.Equal(t, []string{".pdf", ".docx"}, StringSlice(" .pdf, .docx ,"))
	assert.Nil(t, StringSlice(""))
	assert.Nil(t, StringSlice(12))
}

func TestStringAndFormat(t *testing.T) {
	assert.Equal(t, "20", String(int64(20)))
	assert.Equal(t, "0.1", String(0.1))
	assert.Equal(t, "true", String(true))
	assert.Equal(t, "", String([]any{"a"}))
	assert.Equal(t, "a,b", Format([]any{"a", "b"}))
}
