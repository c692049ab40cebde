// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/rulelint/pkg/report"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// Severity markers
const (
	errorMark = "✗"
	infoMark  = "ℹ"
	cleanMark = "✓"
)

// Renderer provides rich terminal output
type Renderer struct {
	output io.Writer
	styles *Styles
}

// New creates a terminal renderer writing with the given color profile
func New(w io.Writer, profile termenv.Profile) (*Renderer, error) {
	lr := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	styles, err := LoadStylesFromData(lr, embeddedStyles)
	if err != nil {
		return nil, fmt.Errorf("failed to load terminal styles: %w", err)
	}
	return &Renderer{output: w, styles: styles}, nil
}

// RenderReport renders targets, their rules and findings, then the summary
func (r *Renderer) RenderReport(rep *report.Report) error {
	var sb strings.Builder
	for _, t := range rep.Targets {
		sb.WriteString(r.styles.Get("Target").Render(t.Path) + "\n")
		for _, rr := range t.Rules {
			sb.WriteString(r.styles.Get("Rule").Render(rr.Rule) + "\n")
			for _, f := range rr.Findings {
				sb.WriteString("    " + r.finding(f) + "\n")
			}
		}
		sb.WriteString("\n")
	}

	if len(rep.MatchErrors) > 0 {
		sb.WriteString(r.styles.Get("Warning").Render("could not evaluate:") + "\n")
		for _, me := range rep.MatchErrors {
			fmt.Fprintf(&sb, "  %s %s\n", me.Target, r.styles.Get("Muted").Render(me.Message))
		}
		sb.WriteString("\n")
	}

	summary := rep.Summary.String()
	if rep.Summary.Total == 0 && rep.Summary.MatchErrors == 0 {
		sb.WriteString(r.styles.Get("SummaryClean").Render(cleanMark+" "+summary) + "\n")
	} else {
		sb.WriteString(r.styles.Get("Summary").Render(summary) + "\n")
	}

	_, err := io.WriteString(r.output, sb.String())
	return err
}

func (r *Renderer) finding(f types.Finding) string {
	if f.Severity == types.SeverityError {
		return r.styles.Get("Error").Render(errorMark+" error") + " " + f.Message
	}
	return r.styles.Get("Info").Render(infoMark+" info") + " " + f.Message
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintln(r.output, r.styles.Get("Error").Render("Error:")+" "+err.Error())
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
