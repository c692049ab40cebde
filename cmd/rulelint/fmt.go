package rulelint

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/core"
	"github.com/arthur-debert/rulelint/pkg/rules"
)

func newFmtCmd(opts *globalOptions) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:     "fmt",
		Short:   MsgFmtShort,
		Long:    MsgFmtLong,
		GroupID: "rules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}
			results, loadErrs, err := core.Format(cmd.Context(), core.FormatOptions{
				RulesDir: cfg.Rules.Dir,
				Load:     rules.LoadOptionsFromConfig(cfg),
				Write:    write,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pending := 0
			for _, r := range results {
				switch {
				case r.Written:
					fmt.Fprintf(out, MsgFmtWritten, r.Path)
				case r.Changed:
					pending++
					fmt.Fprintf(out, MsgFmtWouldChange, r.Path)
				}
			}
			if pending == 0 && loadErrs.Len() == 0 && !anyWritten(results) {
				fmt.Fprintf(out, MsgFmtClean, len(results))
			}
			printLoadProblems(cmd.ErrOrStderr(), loadErrs, nil)

			switch {
			case loadErrs.Len() > 0:
				return silentExit(ExitFailure)
			case pending > 0:
				return silentExit(ExitFindings)
			default:
				return nil
			}
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func anyWritten(results []core.FormatResult) bool {
	for _, r := range results {
		if r.Written {
			return true
		}
	}
	return false
}
