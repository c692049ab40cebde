// Package ui renders reports. It supports terminal (rich), text (plain),
// JSON and checkstyle XML output.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"

	"github.com/arthur-debert/rulelint/pkg/report"
	"github.com/arthur-debert/rulelint/pkg/ui/checkstyle"
	"github.com/arthur-debert/rulelint/pkg/ui/json"
	"github.com/arthur-debert/rulelint/pkg/ui/terminal"
	"github.com/arthur-debert/rulelint/pkg/ui/text"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderReport renders a complete report
	RenderReport(r *report.Report) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		// Buffers and pipes get plain text
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		profile := termenv.ANSI256
		if file, ok := output.(*os.File); ok {
			profile = termenv.NewOutput(file).EnvColorProfile()
		}
		return terminal.New(output, profile)
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	case FormatCheckstyle:
		return checkstyle.New(output), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
