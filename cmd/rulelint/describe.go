package rulelint

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/core"
	"github.com/arthur-debert/rulelint/pkg/dispatcher"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

func newDescribeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "describe <rule>",
		Short:   MsgDescribeShort,
		Long:    MsgDescribeLong,
		GroupID: "rules",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}
			res, err := core.Check(cmd.Context(), cfg.Rules.Dir, rules.LoadOptionsFromConfig(cfg))
			if err != nil {
				return err
			}
			rule, ok := res.Registry.Get(args[0])
			if !ok {
				return fmt.Errorf(MsgErrUnknownRule, args[0])
			}
			md := &markdownRenderer{opts: opts, cmd: cmd}
			fmt.Fprint(cmd.OutOrStdout(), md.Render(describeMarkdown(rule.Doc), ".md"))
			return nil
		},
	}
	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg, err := opts.loadConfig(nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		res, err := core.Check(cmd.Context(), cfg.Rules.Dir, rules.LoadOptionsFromConfig(cfg))
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return res.Registry.Names(), cobra.ShellCompDirectiveNoFileComp
	}
	return cmd
}

// describeMarkdown assembles a markdown page for doc
func describeMarkdown(doc *types.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Name)
	if doc.RuleDescription != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.RuleDescription)
	} else if doc.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Description)
	}

	fmt.Fprintf(&b, "- **path**: `%s`\n", doc.Path)
	fmt.Fprintf(&b, "- **priority**: %s\n", doc.Metadata.Priority)
	if doc.Metadata.Version != "" {
		fmt.Fprintf(&b, "- **version**: %s\n", doc.Metadata.Version)
	}
	if len(doc.Metadata.Tags) > 0 {
		fmt.Fprintf(&b, "- **tags**: %s\n", strings.Join(doc.Metadata.Tags, ", "))
	}
	if doc.Globs != "" {
		fmt.Fprintf(&b, "- **globs**: `%s`\n", doc.Globs)
	}
	if doc.AlwaysApply {
		b.WriteString("- **alwaysApply**: true\n")
	}
	b.WriteString("\n## Filters\n\n")
	for _, f := range doc.Filters {
		fmt.Fprintf(&b, "- %s `%s`\n", f.Type, f.Pattern)
	}

	b.WriteString("\n## Actions\n\n")
	for i, a := range doc.Actions {
		fmt.Fprintf(&b, "%d. **%s**", i+1, a.Kind)
		if a.Message != "" {
			fmt.Fprintf(&b, ": %s", firstLine(a.Message))
		}
		b.WriteString("\n")
		for _, c := range a.Conditions {
			fmt.Fprintf(&b, "   - %s %s `%s`: %s\n", c.Match, dispatcher.ResolveTarget(c), c.Pattern, c.Message)
		}
	}

	if len(doc.Examples) > 0 {
		b.WriteString("\n## Examples\n")
		for _, ex := range doc.Examples {
			fmt.Fprintf(&b, "\nInput:\n\n```\n%s\n```\n", strings.TrimRight(ex.Input, "\n"))
			fmt.Fprintf(&b, "\nOutput:\n\n```\n%s\n```\n", strings.TrimRight(ex.Output, "\n"))
		}
	}

	if body := strings.TrimSpace(doc.Body); body != "" {
		fmt.Fprintf(&b, "\n---\n\n%s\n", body)
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
