package output

import (
	"io"
	"strings"
)

// PlainWriter outputs the explanation between ruled lines with no styling.
type PlainWriter struct{}

func (t *PlainWriter) Write(w io.Writer, e *Explanation) error {
	ew := &errWriter{w: w}
	rule := strings.Repeat("=", 60)

	ew.println("")
	ew.println(rule)
	ew.println("ERROR EXPLANATION")
	ew.println(rule)
	ew.println(strings.TrimSpace(e.Explanation))
	ew.println(rule)
	if src := source(e); src != "" {
		ew.println(src)
	}
	if e.Saved {
		ew.println("Explanation saved to cache")
	}
	ew.println("")
	return ew.err
}
