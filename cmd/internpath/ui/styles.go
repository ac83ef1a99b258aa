// Package ui provides the visual styling for the internpath terminal client,
// with light/dark palettes and band/severity colouring.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"internpath/internal/discovery"
	"internpath/internal/fakecheck"
)

// Palette
var (
	LightBackground = lipgloss.Color("#F8FAFF")
	LightForeground = lipgloss.Color("#1F2937")
	LightPrimary    = lipgloss.Color("#3C3F8C") // indigo
	LightMuted      = lipgloss.Color("#6B7280")
	LightBorder     = lipgloss.Color("#E2E6F3")

	DarkBackground = lipgloss.Color("#111827")
	DarkForeground = lipgloss.Color("#F3F4F6")
	DarkPrimary    = lipgloss.Color("#A5B4FC")
	DarkMuted      = lipgloss.Color("#9CA3AF")
	DarkBorder     = lipgloss.Color("#374151")

	// Band colours match the listing cards: green, yellow, red.
	High   = lipgloss.Color("#15803D")
	Medium = lipgloss.Color("#A16207")
	Low    = lipgloss.Color("#B91C1C")

	Info = lipgloss.Color("#2563EB")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// ThemeFor resolves a configured theme name. "auto" (or anything unknown)
// falls back to DetectTheme.
func ThemeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	return DetectTheme()
}

// DetectTheme guesses from COLORFGBG ("fg;bg"); dark ANSI backgrounds pick
// the dark theme.
func DetectTheme() Theme {
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Content   lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Card      lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Chat
	Prompt        lipgloss.Style
	UserInput     lipgloss.Style
	AgentResponse lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Spinner lipgloss.Style
	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),
		Content: lipgloss.NewStyle().
			Padding(0, 2),
		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),
		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Bold: lipgloss.NewStyle().
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		UserInput: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		AgentResponse: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Success: lipgloss.NewStyle().Foreground(High),
		Error:   lipgloss.NewStyle().Foreground(Low).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(Medium),
		Info:    lipgloss.NewStyle().Foreground(Info),

		Spinner: lipgloss.NewStyle().Foreground(theme.Primary),
		Divider: lipgloss.NewStyle().Foreground(theme.Border),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with auto-detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// BandColor maps a match band to its colour.
func BandColor(b discovery.Band) lipgloss.Color {
	switch b {
	case discovery.BandHigh:
		return High
	case discovery.BandMedium:
		return Medium
	}
	return Low
}

// MatchBadge renders "NN% match" in the band colour.
func (s Styles) MatchBadge(match float64, b discovery.Band) string {
	return s.Badge.Background(BandColor(b)).Render(strconv.Itoa(int(match+0.5)) + "% match")
}

// SeverityColor maps a fake-check severity to its colour.
func SeverityColor(sev fakecheck.Severity) lipgloss.Color {
	switch sev {
	case fakecheck.SeverityHigh:
		return Low
	case fakecheck.SeverityMedium:
		return Medium
	case fakecheck.SeverityLow:
		return High
	}
	return Info
}
