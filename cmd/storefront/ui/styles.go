// Package ui provides the terminal interface for the storefront client and
// the renderers the CLI shares with it.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status colors shared by both themes.
var (
	Sale    = lipgloss.Color("#dc004e")
	Danger  = lipgloss.Color("#e53935")
	InStock = lipgloss.Color("#43a047")
	Caution = lipgloss.Color("#ffb300")
	Notice  = lipgloss.Color("#2196f3")
)

// Theme is the shop palette for one terminal background.
type Theme struct {
	Text    lipgloss.Color
	Brand   lipgloss.Color // headers, prices, focused fields
	Accent  lipgloss.Color // cursor and spinner
	Muted   lipgloss.Color
	Border  lipgloss.Color
	OnBrand lipgloss.Color // text drawn on a Brand background
	IsDark  bool
}

var (
	lightTheme = Theme{
		Text:    "#1a1a2e",
		Brand:   "#1976d2",
		Accent:  Sale,
		Muted:   "#8a94a6",
		Border:  "#d0d7e2",
		OnBrand: "#ffffff",
	}
	darkTheme = Theme{
		Text:    "#eeeeee",
		Brand:   "#90caf9",
		Accent:  "#f48fb1",
		Muted:   "#7a8394",
		Border:  "#333a46",
		OnBrand: "#121212",
		IsDark:  true,
	}
)

// LightTheme is the default palette.
func LightTheme() Theme { return lightTheme }

// DarkTheme is the palette for dark terminals.
func DarkTheme() Theme { return darkTheme }

// darkBackground reports whether COLORFGBG ("fg;bg") names one of the dark
// ANSI background colors.
func darkBackground(colorfgbg string) bool {
	_, bg, ok := strings.Cut(colorfgbg, ";")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(bg)
	if err != nil {
		return false
	}
	return (n >= 0 && n <= 6) || n == 8
}

// DetectTheme picks dark for a dark COLORFGBG background or
// STOREFRONT_DARK_MODE=1, light otherwise.
func DetectTheme() Theme {
	if darkBackground(os.Getenv("COLORFGBG")) || os.Getenv("STOREFRONT_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// ThemeNamed maps the ui.theme config value to a theme. "auto" and unknown
// names detect.
func ThemeNamed(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// Styles are the rendered styles for one theme.
type Styles struct {
	Theme Theme

	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Price    lipgloss.Style

	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	FieldError   lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Spinner  lipgloss.Style
	Divider  lipgloss.Style
	TabOn    lipgloss.Style
	TabOff   lipgloss.Style
	Selected lipgloss.Style
}

// labelWidth is the column width of form labels; field errors indent to it.
const labelWidth = 18

// NewStyles builds every style from theme.
func NewStyles(theme Theme) Styles {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	strong := func(c lipgloss.Color) lipgloss.Style {
		return fg(c).Bold(true)
	}

	return Styles{
		Theme: theme,

		Header: strong(theme.OnBrand).Background(theme.Brand).Padding(0, 2),
		Footer: fg(theme.Muted).Padding(0, 2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Title:    strong(theme.Brand).MarginBottom(1),
		Subtitle: fg(theme.Muted).Italic(true),
		Body:     fg(theme.Text),
		Muted:    fg(theme.Muted),
		Bold:     strong(theme.Text),
		Price:    strong(theme.Brand),

		Label:        fg(theme.Muted).Width(labelWidth),
		FocusedLabel: strong(theme.Brand).Width(labelWidth),
		FieldError:   fg(Danger).PaddingLeft(labelWidth),

		Success: strong(InStock),
		Error:   strong(Danger),
		Warning: strong(Caution),
		Info:    fg(Notice),

		Spinner:  fg(theme.Accent),
		Divider:  fg(theme.Border),
		TabOn:    strong(theme.Brand).Underline(true).Padding(0, 1),
		TabOff:   fg(theme.Muted).Padding(0, 1),
		Selected: strong(theme.Accent),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider draws a horizontal rule width cells wide.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", max(width, 1)))
}
