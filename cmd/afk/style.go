package main

import "github.com/charmbracelet/lipgloss"

var (
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	eventStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func headline(s string) string { return headlineStyle.Render(s) }
func eventLine(s string) string {
	return eventStyle.Render("• ") + s
}
func infoLine(s string) string { return infoStyle.Render(s) }
