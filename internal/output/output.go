package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Explanation is what the writers render.
type Explanation struct {
	ErrorText   string `json:"errorText"`
	Explanation string `json:"explanation"`
	Cached      bool   `json:"cached"`
	Saved       bool   `json:"saved"`
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
	TokensUsed  int    `json:"tokensUsed,omitempty"`
}

// Writer writes an explanation in a specific format.
type Writer interface {
	Write(w io.Writer, e *Explanation) error
}

// Formats lists the names accepted by GetWriter.
var Formats = []string{"pretty", "plain", "markdown", "json"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "pretty", "":
		return &PrettyWriter{}, nil
	case "plain", "text":
		return &PlainWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteExplanation writes e to outPath, or to stdout when outPath is empty.
func WriteExplanation(e *Explanation, format, outPath string, stdout io.Writer) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	if outPath == "" {
		return writer.Write(stdout, e)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, e); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

// source describes where an explanation came from, for footers.
func source(e *Explanation) string {
	switch {
	case e.Cached:
		return "From cache"
	case e.Provider != "" && e.Model != "":
		return fmt.Sprintf("Powered by %s (%s)", e.Provider, e.Model)
	case e.Provider != "":
		return "Powered by " + e.Provider
	default:
		return ""
	}
}
