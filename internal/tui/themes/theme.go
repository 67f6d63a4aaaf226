// Package themes holds the review TUI color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title          lipgloss.Style
	Normal         lipgloss.Style
	Bold           lipgloss.Style
	Selected       lipgloss.Style
	Highlighted    lipgloss.Style
	Disabled       lipgloss.Style
	ToolbarOn      lipgloss.Style
	ToolbarOff     lipgloss.Style
	Substitution   lipgloss.Style
	GroupKey       lipgloss.Style
	Pane           lipgloss.Style
	FocusedPane    lipgloss.Style
	StatusInfo     lipgloss.Style
	StatusError    lipgloss.Style
	StatusBar      lipgloss.Style
	Suggestion     lipgloss.Style
	BestSuggestion lipgloss.Style
	Primary        lipgloss.Color
	Muted          lipgloss.Color
	Border         lipgloss.Color
	Foreground     lipgloss.Color
	Error          lipgloss.Color
	Warning        lipgloss.Color
	Success        lipgloss.Color
}

type palette struct {
	primary, secondary, success, warning, errorColor, info lipgloss.Color
	background, foreground, subtle, border, muted          lipgloss.Color
}

func build(p palette) Theme {
	return Theme{
		Primary:    p.primary,
		Muted:      p.muted,
		Border:     p.border,
		Foreground: p.foreground,
		Error:      p.errorColor,
		Warning:    p.warning,
		Success:    p.success,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Normal: lipgloss.NewStyle().
			Foreground(p.foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.foreground),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.background).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(p.border).
			Foreground(p.foreground),
		Disabled: lipgloss.NewStyle().
			Foreground(p.muted).
			Strikethrough(true),
		ToolbarOn: lipgloss.NewStyle().
			Foreground(p.secondary).
			Padding(0, 1),
		ToolbarOff: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),
		Substitution: lipgloss.NewStyle().
			Foreground(p.warning),
		GroupKey: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		FocusedPane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.primary).
			Padding(0, 1),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.errorColor).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.foreground).
			Background(p.subtle),
		Suggestion: lipgloss.NewStyle().
			Foreground(p.muted),
		BestSuggestion: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:    lipgloss.Color("#7c3aed"),
	secondary:  lipgloss.Color("#a78bfa"),
	success:    lipgloss.Color("#10b981"),
	warning:    lipgloss.Color("#f59e0b"),
	errorColor: lipgloss.Color("#ef4444"),
	info:       lipgloss.Color("#3b82f6"),
	background: lipgloss.Color("#1a1a1a"),
	foreground: lipgloss.Color("#fafafa"),
	subtle:     lipgloss.Color("#262626"),
	border:     lipgloss.Color("#404040"),
	muted:      lipgloss.Color("#737373"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:    lipgloss.Color("#cba6f7"),
	secondary:  lipgloss.Color("#f5c2e7"),
	success:    lipgloss.Color("#a6e3a1"),
	warning:    lipgloss.Color("#f9e2af"),
	errorColor: lipgloss.Color("#f38ba8"),
	info:       lipgloss.Color("#89dceb"),
	background: lipgloss.Color("#1e1e2e"),
	foreground: lipgloss.Color("#cdd6f4"),
	subtle:     lipgloss.Color("#313244"),
	border:     lipgloss.Color("#45475a"),
	muted:      lipgloss.Color("#6c7086"),
})

// Names lists the themes GetTheme knows.
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
