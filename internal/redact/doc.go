// Package redact removes secrets from error text before it is sent to any
// LLM provider.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, credentials embedded in connection URLs, and provider-specific
// tokens (Anthropic, OpenAI, Google, GitHub, Slack).
//
// Home directory paths can also be collapsed to "~" with [HomePaths].
package redact
