package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// Console renders engine state to a terminal.
type Console struct {
	Out      io.Writer
	Markdown func(string) (string, error)
	Profile  termenv.Profile
	Width    int

	titler cases.Caser
}

// NewConsole creates a console writing to out with the terminal's colour profile.
func NewConsole(out io.Writer, width int) *Console {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Console{
		Out:      out,
		Markdown: NewRenderer(width),
		Profile:  termenv.ColorProfile(),
		Width:    width,
		titler:   cases.Title(language.English),
	}
}

// SpeakerName resolves a display name, title-casing the bare ID when no mentor is known.
func (c *Console) SpeakerName(speakerID string, mentor *domain.Mentor) string {
	if mentor != nil && mentor.Name != "" {
		return mentor.Name
	}
	if speakerID == "" {
		return ""
	}
	return c.titler.String(strings.ReplaceAll(speakerID, "_", " "))
}

// Stage prints the speaker and the rendered stage text.
func (c *Console) Stage(stage *domain.Stage, speaker string) {
	if speaker != "" {
		fmt.Fprintln(c.Out, c.Profile.String(speaker).Bold().Foreground(c.Profile.Color("#a78bfa")))
	}
	text, err := c.Markdown(stage.Text)
	if err != nil {
		text = stage.Text + "\n"
	}
	fmt.Fprint(c.Out, text)
}

// Options prints a numbered option list. Locked options are dimmed with their reason.
func (c *Console) Options(options []domain.AvailableOption) {
	for i, o := range options {
		prefix := fmt.Sprintf("  %d) ", i+1)
		body := wordwrap.String(o.Option.Text, c.Width-len(prefix))
		body = strings.ReplaceAll(body, "\n", "\n"+strings.Repeat(" ", len(prefix)))

		line := prefix + body
		switch {
		case o.Disabled:
			line = c.Profile.String(fmt.Sprintf("%s [%s]", line, o.Reason)).Faint().String()
		case o.Option.IsCriticalPath:
			line = c.Profile.String(line).Foreground(c.Profile.Color("#34d399")).String()
		}
		fmt.Fprintln(c.Out, line)
	}
}

// Resources prints the resource bar.
func (c *Console) Resources(r domain.ResourceState) {
	pips := strings.Repeat("●", r.Momentum) + strings.Repeat("○", domain.MaxMomentumLevel-r.Momentum)
	insight := c.Profile.String(fmt.Sprintf("Insight %d", r.Insight)).Foreground(c.Profile.Color("#60a5fa"))
	momentum := c.Profile.String("Momentum " + pips).Foreground(c.Profile.Color("#fbbf24"))
	fmt.Fprintf(c.Out, "%s  |  %s\n", insight, momentum)
}

// Grade prints the conclusion grade.
func (c *Console) Grade(g domain.Grade) {
	color := "#34d399"
	switch g {
	case domain.GradeGood:
		color = "#fbbf24"
	case domain.GradeNeedsReview:
		color = "#f87171"
	}
	fmt.Fprintf(c.Out, "Grade: %s\n", c.Profile.String(c.titler.String(strings.ReplaceAll(string(g), "-", " "))).Foreground(c.Profile.Color(color)))
}

// Notice prints a dimmed informational line.
func (c *Console) Notice(format string, args ...any) {
	fmt.Fprintln(c.Out, c.Profile.String(fmt.Sprintf(format, args...)).Faint())
}

// Error prints an error line.
func (c *Console) Error(err error) {
	fmt.Fprintln(c.Out, c.Profile.String("! "+err.Error()).Foreground(c.Profile.Color("#f87171")))
}
