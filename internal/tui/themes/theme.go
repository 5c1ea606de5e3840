// Package themes holds the dashboard color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Label         lipgloss.Style
	Selected      lipgloss.Style
	TableHeader   lipgloss.Style
	TableCell     lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Tab           lipgloss.Style
	ActiveTab     lipgloss.Style
	Box           lipgloss.Style
	Primary       lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#7c3aed"),
	lipgloss.Color("#10b981"),
	lipgloss.Color("#f59e0b"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
)

// Plain has no colors, for terminals without color support and for tests.
var Plain = newTheme("", "", "", "", "", "")

func newTheme(primary, success, warning, errColor, muted, border lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Success: success,
		Warning: warning,
		Error:   errColor,
		Muted:   muted,
		Border:  border,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtitle: lipgloss.NewStyle().Foreground(muted),
		Normal:   lipgloss.NewStyle(),
		Bold:     lipgloss.NewStyle().Bold(true),
		Label:    lipgloss.NewStyle().Foreground(muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(primary),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
		TableCell: lipgloss.NewStyle().Padding(0, 1),

		StatusError:   lipgloss.NewStyle().Foreground(errColor),
		StatusWarning: lipgloss.NewStyle().Foreground(warning),
		StatusSuccess: lipgloss.NewStyle().Foreground(success),

		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(primary),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}
