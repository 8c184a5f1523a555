// Package ui renders workshop output for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines the lipgloss styles used by the CLI.
var Styles = struct {
	Bold    lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Section lipgloss.Style
	Box     lipgloss.Style
}{
	Bold:    lipgloss.NewStyle().Bold(true),
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	Warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	Section: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("75")),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 1),
}
