package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the panel width used when PrettyWriter.Width is unset.
const DefaultWidth = 80

var sectionColors = map[SectionKind]lipgloss.Color{
	SectionWhat:    lipgloss.Color("11"),
	SectionWhy:     lipgloss.Color("14"),
	SectionHow:     lipgloss.Color("10"),
	SectionGeneral: lipgloss.Color("15"),
}

var sectionIcons = map[SectionKind]string{
	SectionWhat:    "?",
	SectionWhy:     "~",
	SectionHow:     ">",
	SectionGeneral: "*",
}

// PrettyWriter renders each section of the explanation in a bordered panel.
// Colors are only emitted when the destination is a color terminal.
type PrettyWriter struct {
	Width int
}

func (p *PrettyWriter) Write(w io.Writer, e *Explanation) error {
	width := p.Width
	if width <= 0 {
		width = DefaultWidth
	}
	r := lipgloss.NewRenderer(w)
	ew := &errWriter{w: w}

	header := r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(0, 1).
		Width(width - 2)
	ew.println(header.Render("Error Explanation"))

	for _, s := range ParseSections(e.Explanation) {
		color := sectionColors[s.Kind]
		title := r.NewStyle().Bold(true).Foreground(color).Render(sectionIcons[s.Kind] + " " + s.Title)
		panel := r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Padding(0, 1).
			Width(width - 2)
		ew.println(panel.Render(title + "\n\n" + s.Content))
	}

	if src := source(e); src != "" {
		ew.println(r.NewStyle().Faint(true).Render(src))
	}
	if e.Saved {
		ew.println(r.NewStyle().Foreground(lipgloss.Color("10")).Render("Explanation saved to cache"))
	}
	return ew.err
}
