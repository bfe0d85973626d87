// Package ui provides terminal output styling for the helpdesk CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// RenderAccent highlights a headline fragment.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderSuccess marks a completed operation.
func RenderSuccess(s string) string { return successStyle.Render(s) }

// RenderWarn marks a degraded but non-fatal condition.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderError marks a failure.
func RenderError(s string) string { return errorStyle.Render(s) }

// RenderFaint de-emphasizes secondary detail.
func RenderFaint(s string) string { return faintStyle.Render(s) }
