package output

import (
	"regexp"
	"strings"
)

// SectionKind identifies one part of a structured explanation.
type SectionKind string

const (
	SectionWhat    SectionKind = "what"
	SectionWhy     SectionKind = "why"
	SectionHow     SectionKind = "how"
	SectionGeneral SectionKind = "general"
)

// Section is one titled block of an explanation.
type Section struct {
	Kind    SectionKind
	Title   string
	Content string
}

// sectionHeader matches numbered bold headers such as
// "1. **What this error means** - short summary". A non-ASCII icon may sit
// between the number and the bold title.
var sectionHeader = regexp.MustCompile(`^\d+\.\s*(?:[^\x00-\x7F]+\s*)?\*\*(.+?)\*\*(.*)$`)

// ParseSections splits an explanation into its What, Why and How parts.
// Text before the first header becomes a general section. If no header is
// found the whole explanation is returned as a single general section.
func ParseSections(explanation string) []Section {
	var sections []Section
	current := Section{Kind: SectionGeneral, Title: "Explanation"}
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content != "" {
			current.Content = content
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range strings.Split(explanation, "\n") {
		m := sectionHeader.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			body = append(body, strings.TrimRight(line, " \t\r"))
			continue
		}
		flush()
		current = classify(m[1])
		if rest := strings.TrimLeft(strings.TrimSpace(m[2]), "-:– "); rest != "" {
			body = append(body, rest)
		}
	}
	flush()

	if len(sections) == 0 {
		return []Section{{Kind: SectionGeneral, Title: "Explanation", Content: strings.TrimSpace(explanation)}}
	}
	return sections
}

func classify(title string) Section {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "what"):
		return Section{Kind: SectionWhat, Title: "What this error means"}
	case strings.Contains(t, "why"):
		return Section{Kind: SectionWhy, Title: "Why it likely occurred"}
	case strings.Contains(t, "how"):
		return Section{Kind: SectionHow, Title: "How to fix it"}
	default:
		return Section{Kind: SectionGeneral, Title: strings.TrimSpace(title)}
	}
}
