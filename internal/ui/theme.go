package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/quill/internal/config"
)

// Theme defines the colors used by the editor chrome and text area.
type Theme struct {
	// Name matches one of config.Themes.
	Name string

	Background lipgloss.Color
	Foreground lipgloss.Color

	// Bar is the toolbar and status bar background.
	Bar lipgloss.Color

	// Accent marks the path and the active dialog.
	Accent lipgloss.Color

	// Muted is used for hints and the word count.
	Muted lipgloss.Color

	// Error colors failure messages.
	Error lipgloss.Color
}

var themes = map[string]Theme{
	"solarized-dark": {
		Name:       "solarized-dark",
		Background: "#002b36",
		Foreground: "#839496",
		Bar:        "#073642",
		Accent:     "#268bd2",
		Muted:      "#586e75",
		Error:      "#dc322f",
	},
	"base16-mocha": {
		Name:       "base16-mocha",
		Background: "#3b3228",
		Foreground: "#d0c8c6",
		Bar:        "#534636",
		Accent:     "#8ab3b5",
		Muted:      "#7e705a",
		Error:      "#cb6077",
	},
	"base16-ocean": {
		Name:       "base16-ocean",
		Background: "#2b303b",
		Foreground: "#c0c5ce",
		Bar:        "#343d46",
		Accent:     "#8fa1b3",
		Muted:      "#65737e",
		Error:      "#bf616a",
	},
	"base16-eighties": {
		Name:       "base16-eighties",
		Background: "#2d2d2d",
		Foreground: "#d3d0c8",
		Bar:        "#393939",
		Accent:     "#6699cc",
		Muted:      "#747369",
		Error:      "#f2777a",
	},
	"inspired-github": {
		Name:       "inspired-github",
		Background: "#ffffff",
		Foreground: "#323232",
		Bar:        "#f5f5f5",
		Accent:     "#183691",
		Muted:      "#969896",
		Error:      "#a71d5d",
	},
}

// ThemeFor returns the palette for name, falling back to the default theme.
func ThemeFor(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[config.DefaultTheme]
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Editor  lipgloss.Style
	Toolbar lipgloss.Style
	Status  lipgloss.Style
	Path    lipgloss.Style
	Dirty   lipgloss.Style
	Message lipgloss.Style
	Error   lipgloss.Style
	Words   lipgloss.Style
	Dialog  lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t Theme) Styles {
	bar := lipgloss.NewStyle().Background(t.Bar).Foreground(t.Foreground)
	return Styles{
		Editor:  lipgloss.NewStyle().Background(t.Background).Foreground(t.Foreground),
		Toolbar: bar.Foreground(t.Muted).Padding(0, 1),
		Status:  bar.Padding(0, 1),
		Path:    bar.Foreground(t.Accent).Bold(true),
		Dirty:   bar.Foreground(t.Accent),
		Message: bar.Foreground(t.Muted).Italic(true),
		Error:   bar.Foreground(t.Error).Bold(true),
		Words:   bar.Foreground(t.Muted),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1),
	}
}
