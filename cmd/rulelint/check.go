package rulelint

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/core"
	"github.com/arthur-debert/rulelint/pkg/rules"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		GroupID: "rules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}
			res, err := core.Check(cmd.Context(), cfg.Rules.Dir, rules.LoadOptionsFromConfig(cfg))
			if err != nil {
				return err
			}

			n := res.Registry.Len()
			fmt.Fprintf(cmd.OutOrStdout(), MsgRulesLoaded+"\n", n, plural(n, "rule", "rules"), res.Registry.Dir())
			printLoadProblems(cmd.ErrOrStderr(), res.Errors, res.Warnings)
			if !res.OK() {
				return silentExit(ExitFailure)
			}
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
