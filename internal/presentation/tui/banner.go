package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Dialectic ASCII banner.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{` ____  _       _           _   _      `, "#818cf8"},
		{`|  _ \(_) __ _| | ___  ___| |_(_) ___ `, "#a78bfa"},
		{`| | | | |/ _' | |/ _ \/ __| __| |/ __|`, "#c084fc"},
		{`| |_| | | (_| | |  __/ (__| |_| | (__ `, "#e879f9"},
		{`|____/|_|\__,_|_|\___|\___|\__|_|\___|`, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
