package rulelint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/core"
	"github.com/arthur-debert/rulelint/pkg/dispatcher"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
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

			out := cmd.OutOrStdout()
			if res.Registry.Len() == 0 {
				fmt.Fprintln(out, MsgNoRules)
			} else {
				table, err := ruleTable(dispatcher.Order(res.Registry.Rules()), opts.noColor || !isTerminal(out))
				if err != nil {
					return err
				}
				fmt.Fprint(out, table)
			}
			printLoadProblems(cmd.ErrOrStderr(), res.Errors, nil)
			return nil
		},
	}
}

// ruleTable renders one row per rule with pterm
func ruleTable(rs []*rules.Rule, plain bool) (string, error) {
	data := pterm.TableData{{"NAME", "CATEGORY", "PRIORITY", "FILTERS", "ACTIONS", "PATH"}}
	for _, r := range rs {
		category := "-"
		if r.Doc.Category != types.NoCategory {
			category = strconv.Itoa(r.Doc.Category)
		}
		filters := make([]string, 0, len(r.Doc.Filters))
		for _, f := range r.Doc.Filters {
			filters = append(filters, string(f.Type))
		}
		actions := make([]string, 0, len(r.Doc.Actions))
		for _, a := range r.Doc.Actions {
			actions = append(actions, string(a.Kind))
		}
		data = append(data, []string{
			r.Name(),
			category,
			string(r.Doc.Metadata.Priority),
			strings.Join(filters, ","),
			strings.Join(actions, ","),
			r.Doc.Path,
		})
	}

	printer := pterm.DefaultTable.WithHasHeader().WithData(data)
	if plain {
		printer = printer.WithHeaderStyle(pterm.NewStyle())
	}
	return printer.Srender()
}
