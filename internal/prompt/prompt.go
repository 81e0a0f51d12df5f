// Package prompt builds the text sent to an LLM provider to explain a
// terminal error.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const basePrompt = `You are an expert CLI assistant with deep knowledge of programming languages, operating systems, and development tools.

Explain the following terminal error in plain English. Structure your response in 3 parts:

1. **What this error means** - Explain the error in simple terms (not more than 10 words)
2. **Why it likely occurred** - Common causes and scenarios (not more than 20 words)
3. **How to fix it** - Step-by-step solutions

Guidelines:
- Keep each section short and to the point. Use bullet points for clarity.
- Focus on actionable solutions
- If relevant, mention specific commands or code changes
- Use clear, developer-friendly language
- If the error is ambiguous, suggest common interpretations

Format your response using markdown-style headers and bullet points where helpful.
Use clean, readable language for a developer seeing this for the first time.
`

// errorKind pairs an error family with the patterns that identify it.
// Families are checked in order and the first match wins.
type errorKind struct {
	name     string
	patterns []*regexp.Regexp
}

var errorKinds = []errorKind{
	{"python", compile(
		`ModuleNotFoundError`, `ImportError`, `SyntaxError`, `NameError`, `TypeError`,
		`AttributeError`, `FileNotFoundError`, `PermissionError`, `IndentationError`, `ValueError`,
	)},
	{"bash", compile(
		`command not found`, `permission denied`, `no such file or directory`,
		`syntax error`, `cannot execute binary file`,
	)},
	{"docker", compile(
		`image not found`, `container not found`, `port already in use`,
		`permission denied`, `no space left on device`,
	)},
	{"node", compile(
		`Cannot find module`, `Unexpected token`, `ReferenceError`, `TypeError`, `ENOENT`, `EACCES`,
	)},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// DetectErrorType returns the error family ("python", "bash", "docker" or
// "node") suggested by the text, or "" when nothing matches.
func DetectErrorType(errorText string) string {
	for _, k := range errorKinds {
		for _, p := range k.patterns {
			if p.MatchString(errorText) {
				return k.name
			}
		}
	}
	return ""
}

// Base returns the instruction block shared by every prompt.
func Base() string {
	return basePrompt
}

// Build returns the prompt for explaining errorText.
func Build(errorText string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if kind := DetectErrorType(errorText); kind != "" {
		fmt.Fprintf(&b, "\n\nContext: This appears to be a %s error.", kind)
	}
	b.WriteString("\n\nError: ")
	b.WriteString(errorText)
	return b.String()
}

// BuildDebug returns a prompt that carries extra context such as the OS or
// interpreter version. Keys are emitted in sorted order.
func BuildDebug(errorText string, context map[string]string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n\nAdditional Context:")
		for _, k := range keys {
			fmt.Fprintf(&b, "\n- %s: %s", k, context[k])
		}
	}
	b.WriteString("\n\nError: ")
	b.WriteString(errorText)
	return b.String()
}
