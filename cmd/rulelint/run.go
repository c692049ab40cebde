package rulelint

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulelint/pkg/config"
	"github.com/arthur-debert/rulelint/pkg/core"
	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/metrics"
)

// runFlags are the flags shared by run and watch
type runFlags struct {
	event       string
	format      string
	workers     int
	metricsFile string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.event, "event", "", MsgFlagEvent)
	cmd.Flags().StringVar(&f.format, "format", "", MsgFlagFormat)
	cmd.Flags().IntVar(&f.workers, "workers", 0, MsgFlagWorkers)
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", MsgFlagMetricsFile)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// overrides turns the flags that were set into config overrides
func (f *runFlags) overrides(cmd *cobra.Command) map[string]interface{} {
	o := make(map[string]interface{})
	if cmd.Flags().Changed("format") {
		o["run.format"] = f.format
	}
	if cmd.Flags().Changed("workers") {
		o["run.workers"] = f.workers
	}
	if cmd.Flags().Changed("metrics-file") {
		o["metrics.file"] = f.metricsFile
	}
	return o
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:     "run [paths...]",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		Example: MsgRunExample,
		GroupID: "lint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(flags.overrides(cmd))
			if err != nil {
				return err
			}
			return lint(cmd.Context(), opts, cfg, args, flags.event, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags.register(cmd)
	return cmd
}

// lint performs one run, renders it and maps the outcome to an exit code
func lint(ctx context.Context, opts *globalOptions, cfg *config.Config, paths []string, event string, out, errOut io.Writer) error {
	logger := logging.GetLogger("cmd.run")
	if ctx == nil {
		ctx = context.Background()
	}

	runOpts := core.RunOptionsFromConfig(cfg, paths, event)
	var rec *metrics.Recorder
	if cfg.Metrics.File != "" {
		rec = metrics.New()
		runOpts.Metrics = rec
	}

	renderer, err := newReportRenderer(opts, cfg, out)
	if err != nil {
		return err
	}

	res, err := core.Run(ctx, runOpts)
	if err != nil {
		var list *errors.List
		if stderrors.As(err, &list) {
			// Duplicate names: the load phase failed as a whole
			printLoadProblems(errOut, list, nil)
			return silentExit(ExitFailure)
		}
		return fmt.Errorf(MsgErrRun, err)
	}

	if err := renderer.RenderReport(res.Report); err != nil {
		return fmt.Errorf(MsgErrRender, err)
	}
	printLoadProblems(errOut, res.LoadErrors, nil)

	if rec != nil {
		if err := rec.WriteTextfile(cfg.Metrics.File); err != nil {
			return fmt.Errorf(MsgErrMetrics, err)
		}
		logger.Debug().Str("file", cfg.Metrics.File).Msg("Metrics written")
	}

	switch {
	case res.Failed():
		return silentExit(ExitFailure)
	case res.Report.HasErrors():
		return silentExit(ExitFindings)
	default:
		return nil
	}
}
