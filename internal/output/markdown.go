package output

import (
	"io"
	"strings"
)

// MarkdownWriter outputs a markdown document suitable for notes or issues.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, e *Explanation) error {
	ew := &errWriter{w: w}

	ew.printf("## Error Explanation\n\n")
	if e.ErrorText != "" {
		fence := codeFence(e.ErrorText)
		ew.printf("%s\n%s\n%s\n\n", fence, strings.TrimRight(e.ErrorText, "\n"), fence)
	}

	for _, s := range ParseSections(e.Explanation) {
		ew.printf("### %s\n\n%s\n\n", s.Title, s.Content)
	}

	if src := source(e); src != "" {
		ew.printf("_%s_\n", src)
	}
	return ew.err
}

// codeFence returns a backtick fence longer than any run of backticks in s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
