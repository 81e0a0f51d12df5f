package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemini_Explain(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Parts: []geminiPart{{Text: "part one "}, {Text: "part two"}}}},
			},
			UsageMetadata: geminiUsage{TotalTokenCount: 75},
		})
	}))
	defer server.Close()

	g := &Gemini{apiKey: "test-key", model: "gemini-2.0-flash", client: rewriteClient(server)}

	resp, err := g.Explain(context.Background(), Request{UserPrompt: "explain", Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", resp.Content)
	assert.Equal(t, 75, resp.TokensUsed)

	assert.Nil(t, got.SystemInstruction)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, 500, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.8, got.GenerationConfig.TopP, 1e-9)
	assert.Equal(t, 40, got.GenerationConfig.TopK)
	require.NotNil(t, got.GenerationConfig.Temperature)
	assert.InDelta(t, 0.3, *got.GenerationConfig.Temperature, 1e-9)
	require.Len(t, got.SafetySettings, 4)
	for _, s := range got.SafetySettings {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.Threshold)
	}
}

func TestGemini_SystemInstruction(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{{Text: "ok"}}}}},
		})
	}))
	defer server.Close()

	g := &Gemini{apiKey: "k", model: "m", client: rewriteClient(server)}
	_, err := g.Explain(context.Background(), Request{SystemPrompt: "be brief", UserPrompt: "x"})
	require.NoError(t, err)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
}

func TestGemini_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"API key not valid"}`))
	}))
	defer server.Close()

	g := &Gemini{apiKey: "bad", model: "m", client: rewriteClient(server)}
	_, err := g.Explain(context.Background(), Request{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestGemini_Blocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	g := &Gemini{apiKey: "k", model: "m", client: rewriteClient(server)}
	_, err := g.Explain(context.Background(), Request{UserPrompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGemini_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := &Gemini{apiKey: "k", model: "m", client: rewriteClient(server)}
	_, err := g.Explain(context.Background(), Request{UserPrompt: "x"})
	assert.Error(t, err)
}

func TestNewGemini_KeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	g, err := NewGemini("m", "")
	require.NoError(t, err)
	assert.Equal(t, "google-key", g.apiKey)

	t.Setenv("GOOGLE_API_KEY", "")
	_, err = NewGemini("m", "")
	assert.True(t, IsAuthError(err))
}
