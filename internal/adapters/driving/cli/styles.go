package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
)

// statusLabel renders a sync status with its colour.
func statusLabel(s domain.SyncStatus) string {
	switch s {
	case domain.SyncSuccess:
		return successStyle.Render(string(s))
	case domain.SyncFailed:
		return errorStyle.Render(string(s))
	case domain.SyncInProgress:
		return warningStyle.Render(string(s))
	default:
		return mutedStyle.Render("never")
	}
}
