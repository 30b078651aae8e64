package main

import "github.com/charmbracelet/lipgloss"

// --- STYLES ---
var (
	panelPurple = lipgloss.Color("#7D56F4")

	docStyle   = lipgloss.NewStyle().Margin(1, 2)
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(panelPurple).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Status styles
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	stoppedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	unknownStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	copySuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)

	// Toasts
	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("28")).
				Padding(0, 1)
	toastFailureStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("160")).
				Padding(0, 1)

	// Detail view styles
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(panelPurple).
				Padding(0, 1)
	detailAttrStyle = lipgloss.NewStyle().Bold(true)
	detailValStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	detailPaneStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelPurple)
)

func renderStatus(s status) string {
	switch s {
	case statusRunning:
		return successStyle.Render(s.Label())
	case statusStopped:
		return stoppedStyle.Render(s.Label())
	case statusPending:
		return pendingStyle.Render(s.Label())
	default:
		return unknownStyle.Render(s.Label())
	}
}
