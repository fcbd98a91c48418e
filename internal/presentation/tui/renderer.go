package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// If the terminal renderer cannot be built, text is returned unchanged.
func NewRenderer(width int) func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return PlainText
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlainText is a renderer that leaves the text untouched.
func PlainText(text string) (string, error) {
	return text + "\n", nil
}
