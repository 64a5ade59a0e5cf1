package ui

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme for the form
type Theme struct {
	Name string

	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor

	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor

	Border   lipgloss.TerminalColor
	Muted    lipgloss.TerminalColor
	Selected lipgloss.TerminalColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Available themes
var (
	DefaultTheme = Theme{
		Name:      "default",
		Primary:   adaptive("#1E40AF", "#60A5FA"),
		Secondary: adaptive("#6B7280", "#9CA3AF"),
		Accent:    adaptive("#7C3AED", "#A855F7"),
		Success:   adaptive("#059669", "#34D399"),
		Warning:   adaptive("#D97706", "#FBBF24"),
		Error:     adaptive("#DC2626", "#F87171"),
		Border:    adaptive("#D1D5DB", "#374151"),
		Muted:     adaptive("#6B7280", "#9CA3AF"),
		Selected:  adaptive("#DBEAFE", "#1E3A8A"),
	}

	HighContrastTheme = Theme{
		Name:      "high-contrast",
		Primary:   adaptive("#000000", "#FFFFFF"),
		Secondary: adaptive("#333333", "#DDDDDD"),
		Accent:    adaptive("#000080", "#8080FF"),
		Success:   adaptive("#006600", "#00FF00"),
		Warning:   adaptive("#CC6600", "#FFAA00"),
		Error:     adaptive("#CC0000", "#FF4444"),
		Border:    adaptive("#000000", "#FFFFFF"),
		Muted:     adaptive("#444444", "#BBBBBB"),
		Selected:  adaptive("#FFFF00", "#444444"),
	}

	MinimalTheme = Theme{
		Name:      "minimal",
		Primary:   adaptive("#2D3748", "#E2E8F0"),
		Secondary: adaptive("#718096", "#A0AEC0"),
		Accent:    adaptive("#4A5568", "#CBD5E0"),
		Success:   adaptive("#2F855A", "#68D391"),
		Warning:   adaptive("#C05621", "#F6AD55"),
		Error:     adaptive("#C53030", "#FC8181"),
		Border:    adaptive("#E2E8F0", "#2D3748"),
		Muted:     adaptive("#A0AEC0", "#718096"),
		Selected:  adaptive("#EDF2F7", "#2D3748"),
	}
)

// Current active theme
var currentTheme = DefaultTheme

var colorDisabled atomic.Bool

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "default", "":
		SetTheme(&DefaultTheme)
		return true
	case "high-contrast":
		SetTheme(&HighContrastTheme)
		return true
	case "minimal":
		SetTheme(&MinimalTheme)
		return true
	default:
		return false
	}
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// SetColorDisabled forces monochrome output regardless of NO_COLOR
func SetColorDisabled(disabled bool) {
	colorDisabled.Store(disabled)
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return colorDisabled.Load() || os.Getenv("NO_COLOR") != ""
}

// monochrome strips every color from t
func monochrome(t Theme) Theme {
	none := lipgloss.NoColor{}
	return Theme{
		Name:      t.Name,
		Primary:   none,
		Secondary: none,
		Accent:    none,
		Success:   none,
		Warning:   none,
		Error:     none,
		Border:    none,
		Muted:     none,
		Selected:  none,
	}
}

// Styles contains all the styled components of the form
type Styles struct {
	Theme Theme

	Title lipgloss.Style
	Label lipgloss.Style
	Muted lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style

	// Field frames
	Focused lipgloss.Style
	Blurred lipgloss.Style

	Option         lipgloss.Style
	OptionSelected lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style

	Pending lipgloss.Style
	Movie   lipgloss.Style
	Box     lipgloss.Style
}

// GetStyles builds styles from the current theme
func GetStyles() *Styles {
	theme := GetTheme()
	if IsColorDisabled() {
		theme = monochrome(theme)
	}

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Blurred: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Option: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		OptionSelected: lipgloss.NewStyle().
			Background(theme.Selected).
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Button: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2),

		Pending: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Movie: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),
	}
}
