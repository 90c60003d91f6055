// Package console styles the progress lines printed during a run.
package console

import "github.com/charmbracelet/lipgloss"

var (
	headingStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#B35900", Dark: "#FF8C00"})
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C00000", Dark: "#FF5F5F"})
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#FFD75F"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8A8A8A"})
)

// Heading marks day headers and the end of a run.
func Heading(text string) string { return headingStyle.Render(text) }

// Failure marks rejected uploads and fatal errors.
func Failure(text string) string { return failureStyle.Render(text) }

// Notice marks inferred breaks and ignored failures.
func Notice(text string) string { return noticeStyle.Render(text) }

// Muted renders record dumps.
func Muted(text string) string { return mutedStyle.Render(text) }
