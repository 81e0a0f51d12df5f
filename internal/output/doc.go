// Package output renders an explanation for the terminal or for files.
//
// Supported formats: pretty (bordered panels per section, styled with
// lipgloss), plain (ruled text), markdown and json. Use [GetWriter] to
// obtain a [Writer] by format name, or [WriteExplanation] to render straight
// to a file or stdout.
package output
