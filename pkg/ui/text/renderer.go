// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/rulelint/pkg/report"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderReport writes one block per target:
//
//	path/to/file.go
//	  rule_name
//	    error: message
//
// followed by unreadable targets and the summary line.
func (r *Renderer) RenderReport(rep *report.Report) error {
	var sb strings.Builder
	for _, t := range rep.Targets {
		sb.WriteString(t.Path + "\n")
		for _, rr := range t.Rules {
			sb.WriteString("  " + rr.Rule + "\n")
			for _, f := range rr.Findings {
				fmt.Fprintf(&sb, "    %s: %s\n", f.Severity, f.Message)
			}
		}
		sb.WriteString("\n")
	}
	if len(rep.MatchErrors) > 0 {
		sb.WriteString("could not evaluate:\n")
		for _, me := range rep.MatchErrors {
			fmt.Fprintf(&sb, "  %s: %s\n", me.Target, me.Message)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(rep.Summary.String() + "\n")
	_, err := io.WriteString(r.output, sb.String())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
