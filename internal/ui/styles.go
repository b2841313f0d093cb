// Package ui holds the terminal styles shared by the CLI commands.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors adapt to light and dark terminals.
var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2f7d32", Dark: "#8bd17c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#a15c00", Dark: "#f0b35a"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#b3261e", Dark: "#f2786d"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#1f5fbf", Dark: "#7aa7ff"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#9a9a9a"}
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(ColorPass).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle   = lipgloss.NewStyle().Foreground(ColorFail).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Indicator glyphs.
const (
	IconOn  = "✓"
	IconOff = "✗"
)

func init() {
	if termenv.EnvNoColor() {
		DisableColor()
	}
}

// DisableColor turns off all styling.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// RenderPass styles a success message.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn styles a warning.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail styles a failure.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderAccent styles a value worth noticing, such as a path.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderMuted styles secondary text.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// StatusIndicator renders the enabled indicator with its hint.
func StatusIndicator(enabled bool) string {
	if enabled {
		return fmt.Sprintf("%s %s", RenderPass(IconOn+" enabled"), RenderMuted("(autocomment toggle to disable)"))
	}
	return fmt.Sprintf("%s %s", RenderFail(IconOff+" disabled"), RenderMuted("(autocomment toggle to enable)"))
}
