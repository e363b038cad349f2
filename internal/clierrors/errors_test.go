package clierrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestClassify_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config", fmt.Errorf("load: %w", domain.ErrConfig), ExitConfig},
		{"dimension mismatch", domain.ErrDimensionMismatch, ExitConfig},
		{"nothing staged", fmt.Errorf("%w: collection c holds 3 points", domain.ErrNothingStaged), ExitInput},
		{"storage", fmt.Errorf("%w: write artifact", domain.ErrStorage), ExitStorage},
		{"embedding", domain.ErrEmbeddingUnavailable, ExitNetwork},
		{"llm", domain.ErrLLMUnavailable, ExitNetwork},
		{"vector store", domain.ErrVectorStoreUnavailable, ExitNetwork},
		{"rate limited", domain.ErrRateLimited, ExitNetwork},
		{"input", domain.ErrInvalidInput, ExitInput},
		{"parse", domain.ErrParse, ExitInput},
		{"collection", domain.ErrCollectionNotFound, ExitNotFound},
		{"locked", fmt.Errorf("%w: held by pid 7", domain.ErrInstanceLocked), ExitLocked},
		{"cancelled", context.Canceled, ExitInterrupted},
		{"unknown", errors.New("boom"), ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ue := Classify(tt.err)
			require.NotNil(t, ue)
			assert.Equal(t, tt.want, ue.ExitCode)
			assert.ErrorIs(t, ue, tt.err)
		})
	}
}

func TestClassify_PassesThroughUserError(t *testing.T) {
	orig := New(ExitInput, "Reset aborted", "", "Type yes to confirm", nil)
	assert.Same(t, orig, Classify(fmt.Errorf("reset: %w", orig)))
	assert.Nil(t, Classify(nil))
}

func TestUserError_Error(t *testing.T) {
	assert.Equal(t, "msg", New(1, "msg", "", "", nil).Error())
	assert.Equal(t, "msg: inner", New(1, "msg", "", "", errors.New("inner")).Error())
}

func TestFormat_NoColor(t *testing.T) {
	ue := New(ExitLocked, "Another lexrag instance is running", "held by pid 7", "Wait", nil)
	assert.Equal(t,
		"Error: Another lexrag instance is running\nCause: held by pid 7\nFix:   Wait\n",
		ue.Format(true))
	assert.Equal(t, "Error: bare\n", New(1, "bare", "", "", nil).Format(true))
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	code := Report(&buf, fmt.Errorf("%w: lexrag.pid", domain.ErrInstanceLocked), true)
	assert.Equal(t, ExitLocked, code)
	assert.Contains(t, buf.String(), "Another lexrag instance is running")

	buf.Reset()
	assert.Equal(t, ExitSuccess, Report(&buf, nil, true))
	assert.Zero(t, buf.Len())
}
