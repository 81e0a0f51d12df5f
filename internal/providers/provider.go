package providers

import (
	"context"
	"fmt"
	"strings"
)

// Request contains the data sent to an LLM for one explanation.
type Request struct {
	// SystemPrompt is optional; providers omit the system turn when empty.
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw response from an LLM.
type Response struct {
	Content    string
	TokensUsed int
}

// Explainer is the provider abstraction interface.
type Explainer interface {
	Explain(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a provider by name. An empty apiKey falls back to the
// provider's environment variable.
func New(provider, model, apiKey string) (Explainer, error) {
	if model == "" {
		model = DefaultModel(provider)
	}
	switch strings.ToLower(provider) {
	case "anthropic":
		return NewAnthropic(model, apiKey)
	case "openai":
		return NewOpenAI(model, apiKey)
	case "gemini", "google":
		return NewGemini(model, apiKey)
	case "ollama", "lmstudio":
		return NewOllama(model, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// ModelInfo lists the models commonly used with a provider. The first model
// is the provider's default.
type ModelInfo struct {
	Provider string
	Models   []string
}

// Catalog is the list of known providers and models.
var Catalog = []ModelInfo{
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.0-flash",
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: "anthropic",
		Models: []string{
			"claude-haiku-4-5",
			"claude-sonnet-4-5",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-4.1-mini",
			"gpt-4.1",
			"o3-mini",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.2",
			"llama3.1",
			"qwen2.5-coder",
		},
	},
}

// DefaultModel returns the first catalog model for provider, or "" if the
// provider is unknown.
func DefaultModel(provider string) string {
	p := strings.ToLower(provider)
	switch p {
	case "google":
		p = "gemini"
	case "lmstudio":
		p = "ollama"
	}
	for _, info := range Catalog {
		if info.Provider == p && len(info.Models) > 0 {
			return info.Models[0]
		}
	}
	return ""
}

const pingPrompt = "Hello, this is a test message. Please respond with 'OK' if you can see this."

// Ping sends a minimal request to check that the provider is reachable and
// the credentials are accepted.
func Ping(ctx context.Context, e Explainer) error {
	_, err := e.Explain(ctx, Request{UserPrompt: pingPrompt, MaxTokens: 10})
	return err
}
