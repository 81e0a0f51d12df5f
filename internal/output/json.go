package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter outputs the explanation as a JSON object.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, e *Explanation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}
