package ui

import "github.com/charmbracelet/lipgloss"

// Basic ANSI colors so help output follows the terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	// dimmed so command names stand out
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
