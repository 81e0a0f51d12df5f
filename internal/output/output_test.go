package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `1. **What this error means** - Python cannot find the package.
2. **Why it likely occurred**
- The package is not installed
- Wrong virtualenv
3. **How to fix it**
- Run ` + "`pip install requests`"

func sampleExplanation() *Explanation {
	return &Explanation{
		ErrorText:   "ModuleNotFoundError: No module named 'requests'",
		Explanation: sample,
		Provider:    "gemini",
		Model:       "gemini-2.0-flash",
	}
}

func TestParseSections(t *testing.T) {
	sections := ParseSections(sample)
	require.Len(t, sections, 3)

	assert.Equal(t, SectionWhat, sections[0].Kind)
	assert.Equal(t, "What this error means", sections[0].Title)
	assert.Equal(t, "Python cannot find the package.", sections[0].Content)

	assert.Equal(t, SectionWhy, sections[1].Kind)
	assert.Equal(t, "- The package is not installed\n- Wrong virtualenv", sections[1].Content)

	assert.Equal(t, SectionHow, sections[2].Kind)
	assert.Equal(t, "- Run `pip install requests`", sections[2].Content)
}

func TestParseSections_NoHeaders(t *testing.T) {
	sections := ParseSections("  just some text\nmore  ")
	require.Len(t, sections, 1)
	assert.Equal(t, SectionGeneral, sections[0].Kind)
	assert.Equal(t, "just some text\nmore", sections[0].Content)
}

func TestParseSections_PreambleAndIcons(t *testing.T) {
	text := "Here is the breakdown:\n1. ❓ **What**\nshort\n2. 🛠️ **How to fix it**\n1. Install **requests** with pip"
	sections := ParseSections(text)
	require.Len(t, sections, 3)
	assert.Equal(t, SectionGeneral, sections[0].Kind)
	assert.Equal(t, "Here is the breakdown:", sections[0].Content)
	assert.Equal(t, SectionWhat, sections[1].Kind)
	assert.Equal(t, SectionHow, sections[2].Kind)
	assert.Equal(t, "1. Install **requests** with pip", sections[2].Content)
}

func TestParseSections_EmptySectionDropped(t *testing.T) {
	sections := ParseSections("1. **What**\n2. **Why**\nbecause")
	require.Len(t, sections, 1)
	assert.Equal(t, SectionWhy, sections[0].Kind)
}

func TestGetWriter(t *testing.T) {
	for _, f := range append(Formats, "text", "md", "") {
		w, err := GetWriter(f)
		require.NoError(t, err, f)
		assert.NotNil(t, w)
	}
	_, err := GetWriter("sarif")
	assert.EqualError(t, err, "unsupported output format: sarif")
}

func TestPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	e := sampleExplanation()
	e.Saved = true
	require.NoError(t, (&PlainWriter{}).Write(&buf, e))

	out := buf.String()
	rule := strings.Repeat("=", 60)
	assert.Equal(t, 3, strings.Count(out, rule))
	assert.Contains(t, out, "ERROR EXPLANATION")
	assert.Contains(t, out, sample)
	assert.Contains(t, out, "Powered by gemini (gemini-2.0-flash)")
	assert.Contains(t, out, "Explanation saved to cache")
}

func TestPrettyWriter(t *testing.T) {
	var buf bytes.Buffer
	e := sampleExplanation()
	e.Cached = true
	require.NoError(t, (&PrettyWriter{Width: 60}).Write(&buf, e))

	out := buf.String()
	assert.Contains(t, out, "Error Explanation")
	assert.Contains(t, out, "What this error means")
	assert.Contains(t, out, "Why it likely occurred")
	assert.Contains(t, out, "How to fix it")
	assert.Contains(t, out, "pip install requests")
	assert.Contains(t, out, "From cache")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes when writing to a buffer")

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 60, "line too wide: %q", line)
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, sampleExplanation()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "## Error Explanation\n\n```\nModuleNotFoundError"))
	assert.Contains(t, out, "### What this error means\n\nPython cannot find the package.\n\n")
	assert.Contains(t, out, "### How to fix it\n\n")
	assert.Contains(t, out, "_Powered by gemini (gemini-2.0-flash)_")
}

func TestCodeFence(t *testing.T) {
	assert.Equal(t, "```", codeFence("plain"))
	assert.Equal(t, "```", codeFence("a `b`"))
	assert.Equal(t, "````", codeFence("```go\nx\n```"))
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	e := sampleExplanation()
	e.Explanation = "use <pkg> & retry"
	require.NoError(t, (&JSONWriter{}).Write(&buf, e))

	assert.Contains(t, buf.String(), "use <pkg> & retry")

	var got Explanation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *e, got)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Contains(t, raw, "errorText")
	assert.Contains(t, raw, "cached")
	assert.NotContains(t, raw, "tokensUsed")
}

func TestWriteExplanation_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	var stdout bytes.Buffer
	require.NoError(t, WriteExplanation(sampleExplanation(), "markdown", path, &stdout))

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Error Explanation")
}

func TestWriteExplanation_FileErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.json")
	assert.Error(t, WriteExplanation(sampleExplanation(), "json", missing, io.Discard))

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	assert.Error(t, WriteExplanation(sampleExplanation(), "json", "/dev/full", io.Discard))
}

func TestWriteExplanation_Stdout(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, WriteExplanation(sampleExplanation(), "plain", "", &stdout))
	assert.Contains(t, stdout.String(), "ERROR EXPLANATION")

	assert.Error(t, WriteExplanation(sampleExplanation(), "xml", "", &stdout))
}
