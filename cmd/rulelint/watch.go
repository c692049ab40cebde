package rulelint

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/config"
	"github.com/arthur-debert/rulelint/pkg/watch"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:     "watch [paths...]",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "lint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(flags.overrides(cmd))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return watchAndLint(ctx, opts, cfg, args, flags.event, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags.register(cmd)
	return cmd
}

// watchAndLint runs once, then again after every burst of changes to the
// rules directory or the targets, until ctx is cancelled
func watchAndLint(ctx context.Context, opts *globalOptions, cfg *config.Config, paths []string, event string, out, errOut io.Writer) error {
	targets := paths
	if len(targets) == 0 {
		targets = []string{"."}
	}

	rerun := func(ctx context.Context) {
		err := lint(ctx, opts, cfg, paths, event, out, errOut)
		// Findings and load failures are already reported
		if err != nil && !IsSilent(err) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}

	w, err := watch.New(watch.Config{
		Paths:    append([]string{cfg.Rules.Dir}, targets...),
		Debounce: cfg.Watch.Debounce,
		Ignore:   cfg.Run.Ignore,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	rerun(ctx)
	return w.Watch(ctx, func(ctx context.Context, changed []string) error {
		fmt.Fprintf(out, MsgWatchRerun, len(changed))
		rerun(ctx)
		return nil
	})
}
