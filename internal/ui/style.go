package ui

import "github.com/charmbracelet/lipgloss"

// Tone classifies a status cell.
type Tone int

const (
	Plain Tone = iota
	Changed
	Unchanged
	Inherited
	Problem
)

var tones = map[Tone]lipgloss.Style{
	Plain:     lipgloss.NewStyle(),
	Changed:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Unchanged: lipgloss.NewStyle().Faint(true),
	Inherited: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	Problem:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

// Paint renders s in the style for tone. Styling is dropped when the output
// is not a color terminal.
func Paint(tone Tone, s string) string {
	return tones[tone].Render(s)
}
