package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/wardrota/wardrota/internal/availability"
)

// Color definitions for consistent styling across the UI.
var (
	// Unavailable: red, the hours nobody should book
	colorUnavailable = color.New(color.FgRed)

	// Preferred: bold magenta so it stands out from plain availability
	colorPreferred = color.New(color.FgMagenta, color.Bold)

	// Available: green
	colorAvailable = color.New(color.FgGreen)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Muted: unset hours and secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatStatus colors s with the color of st.
func formatStatus(st availability.Status, s string) string {
	switch st {
	case availability.Unavailable:
		return colorUnavailable.Sprint(s)
	case availability.Preferred:
		return colorPreferred.Sprint(s)
	case availability.Available:
		return colorAvailable.Sprint(s)
	default:
		return colorMuted.Sprint(s)
	}
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
