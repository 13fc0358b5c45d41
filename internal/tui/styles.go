// Package tui is the interactive terminal surface: menus, line editing,
// the generation spinner and the rendering of commit descriptions.
package tui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLOR PALETTE - Monokai Pro
// =============================================================================

var (
	colorForeground = lipgloss.Color("#fcfcfa")
	colorCyan       = lipgloss.Color("#78dce8")
	colorGreen      = lipgloss.Color("#a9dc76")
	colorYellow     = lipgloss.Color("#ffd866")
	colorRed        = lipgloss.Color("#ff6188")
	colorMagenta    = lipgloss.Color("#ab9df2")
	colorGray       = lipgloss.Color("#727072")
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// statusStyle is used for the generation summary and the "files:" header
	statusStyle = lipgloss.NewStyle().Foreground(colorGreen)

	// infoStyle is used for the spinner and file entries
	infoStyle = lipgloss.NewStyle().Foreground(colorCyan)

	// warningStyle is used for non-fatal problems with a description
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)

	// errorStyle is used for fatal errors
	errorStyle = lipgloss.NewStyle().Foreground(colorRed)

	// overflowStyle marks characters past the line length limit
	overflowStyle = lipgloss.NewStyle().Foreground(colorRed)

	// attributionStyle marks references to the generating model
	attributionStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	// descriptionStyle is the commit description body
	descriptionStyle = lipgloss.NewStyle().Foreground(colorForeground)

	// menuKeyStyle is the shortcut letter in menu options
	menuKeyStyle = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)

	// debugTitleStyle and debugBodyStyle frame --debug-prompt/--debug-response output
	debugTitleStyle = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	debugBodyStyle  = lipgloss.NewStyle().Foreground(colorGray)
)

// ErrorText styles msg as a fatal error line.
func ErrorText(msg string) string {
	return errorStyle.Render(msg)
}

// WarningText styles msg as a warning line.
func WarningText(msg string) string {
	return warningStyle.Render(msg)
}
