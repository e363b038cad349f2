package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

type stubPinger struct {
	err    error
	closed bool
}

func (s *stubPinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("probe without deadline")
	}
	return s.err
}

func (s *stubPinger) Close() error {
	s.closed = true
	return nil
}

func TestProbe(t *testing.T) {
	ok := &stubPinger{}
	require.NoError(t, probe(context.Background(), ok, time.Second, domain.AIProviderOllama))
	assert.False(t, ok.closed, "a reachable service stays open")

	down := &stubPinger{err: errors.New("connection refused")}
	err := probe(context.Background(), down, time.Second, domain.AIProviderOpenAI)
	require.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "openai unreachable: connection refused")
	assert.True(t, down.closed)
}

func TestConfigValidator_Timeout(t *testing.T) {
	assert.Equal(t, DefaultPingTimeout, NewConfigValidator().timeout())
	assert.Equal(t, DefaultPingTimeout, (&ConfigValidator{}).timeout())
	assert.Equal(t, time.Second, (&ConfigValidator{Timeout: time.Second}).timeout())
}

func TestConfigValidator_RejectsBeforeDialling(t *testing.T) {
	v := NewConfigValidator()

	tests := []struct {
		name    string
		check   func() error
		mention string
	}{
		{"nil embedding", func() error { return v.ValidateEmbedding(nil) }, "not configured"},
		{"nil llm", func() error { return v.ValidateLLM(nil) }, "not configured"},
		{"openai embedding without key", func() error {
			return v.ValidateEmbedding(&domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", Dimensions: 1536,
			})
		}, "OPENAI_API_KEY"},
		{"groq llm without key", func() error {
			return v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderGroq, Model: "llama-3.1-8b-instant"})
		}, "GROQ_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			require.ErrorIs(t, err, domain.ErrConfig)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestConfigValidator_SlowProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	v := &ConfigValidator{Timeout: 50 * time.Millisecond}
	err := v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL, Model: "llama3.2"})
	require.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "ollama unreachable")
}
