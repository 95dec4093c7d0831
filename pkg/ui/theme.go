package ui

import (
	"fmt"
	"image/color"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the chrome styles around the canvas. Node and edge colors come
// from the render variant.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor

	Header    lipgloss.Style
	HeaderDim lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Detail    lipgloss.Style
	DetailKey lipgloss.Style
	Label     lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired chrome (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Muted:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Danger:  lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Success: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
	}

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.HeaderDim = r.NewStyle().Foreground(t.Subtext).Padding(0, 1)
	t.Status = r.NewStyle().Foreground(t.Success)
	t.Error = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Detail = r.NewStyle().Foreground(t.Subtext)
	t.DetailKey = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Label = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}

// hexColor renders c blended over bg by opacity, as "#rrggbb".
func hexColor(c, bg color.RGBA, opacity float64) string {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*opacity + float64(b)*(1-opacity) + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B))
}
