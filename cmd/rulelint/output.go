package rulelint

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/cobrax/topics"
	"github.com/arthur-debert/rulelint/pkg/config"
	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/ui"
)

// newReportRenderer picks the report renderer for cfg.Run.Format.
// --no-color turns auto and terminal into plain text.
func newReportRenderer(opts *globalOptions, cfg *config.Config, w io.Writer) (ui.Renderer, error) {
	format, err := ui.ParseFormat(cfg.Run.Format)
	if err != nil {
		return nil, err
	}
	if opts.noColor && (format == ui.FormatAuto || format == ui.FormatTerminal) {
		format = ui.FormatText
	}
	return ui.NewRenderer(format, w)
}

// printLoadProblems writes rejected documents and warnings to w
func printLoadProblems(w io.Writer, errs *errors.List, warnings []rules.Warning) {
	if errs.Len() > 0 {
		fmt.Fprintln(w, MsgLoadErrorsHeader)
		for _, err := range errs.Errors {
			fmt.Fprintf(w, "  %s\n", err.Error())
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintln(w, MsgWarningsHeader)
		for _, warning := range warnings {
			fmt.Fprintf(w, "  %s\n", warning.String())
		}
	}
}

// markdownRenderer renders markdown with glamour, without styling when the
// output is not a terminal or colors are disabled
type markdownRenderer struct {
	opts *globalOptions
	cmd  *cobra.Command
}

func (m *markdownRenderer) Render(content, format string) string {
	style := "notty"
	if !m.opts.noColor && isTerminal(m.cmd.OutOrStdout()) {
		style = "auto"
	}
	r := &topics.GlamourRenderer{Style: style}
	return r.Render(content, format)
}
