// Package providers implements the Explainer interface for each supported LLM
// provider.
//
// Supported providers: Google (Gemini, the default), Anthropic (Claude),
// OpenAI (GPT), and Ollama / LM Studio for local models.
//
// All providers share a common retry helper with exponential back-off for
// rate-limit and server errors. Authentication failures, including a missing
// API key, are reported as errors for which [IsAuthError] returns true.
//
// Use [New] to obtain an Explainer by provider name and model string.
package providers
