package core

import (
	"context"
	stderrors "errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/rulelint/pkg/config"
	"github.com/arthur-debert/rulelint/pkg/dispatcher"
	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/filesystem"
	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/matchers"
	"github.com/arthur-debert/rulelint/pkg/metrics"
	"github.com/arthur-debert/rulelint/pkg/report"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// RunOptions contains options for a lint run
type RunOptions struct {
	RulesDir string
	Load     rules.LoadOptions

	// Paths are files or directories to evaluate. Defaults to ".".
	Paths []string
	// Event is attached to every target when set
	Event string

	// Workers bounds concurrent target evaluation. Defaults to one per CPU.
	Workers int
	// Ignore holds glob patterns of target paths to skip
	Ignore []string
	// MaxFileSize is the largest target whose content is read, 0 for no
	// limit. Larger targets are matched by path only.
	MaxFileSize int64

	// FileSystem reads the targets. Defaults to the OS filesystem.
	FileSystem types.FS
	// Metrics, when set, records the run
	Metrics *metrics.Recorder
}

// RunOptionsFromConfig maps the merged configuration onto run options
func RunOptionsFromConfig(cfg *config.Config, paths []string, event string) RunOptions {
	return RunOptions{
		RulesDir:    cfg.Rules.Dir,
		Load:        rules.LoadOptionsFromConfig(cfg),
		Paths:       paths,
		Event:       event,
		Workers:     cfg.Run.Workers,
		Ignore:      cfg.Run.Ignore,
		MaxFileSize: cfg.Run.MaxFileSize,
	}
}

// RunResult is the outcome of a run
type RunResult struct {
	Report   *report.Report
	Registry *rules.Registry
	// LoadErrors holds the documents rejected at load time; the run
	// evaluated the remaining rules
	LoadErrors *errors.List
}

// Failed reports whether the run should be treated as unsuccessful beyond
// its findings: rejected documents or unreadable targets
func (r *RunResult) Failed() bool {
	return r.LoadErrors.Len() > 0 || r.Report.Summary.MatchErrors > 0
}

// Run loads the rules and evaluates them against every target
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	logger := logging.GetLogger("core.run")
	start := time.Now()

	reg, loadErrs, err := load(ctx, opts.RulesDir, opts.Load)
	if err != nil {
		return nil, err
	}
	if loadErrs.Has(errors.ErrDuplicateName) {
		return nil, loadErrs
	}
	if opts.Metrics != nil {
		opts.Metrics.ObserveLoad(reg.Len(), loadErrs)
	}

	rep, err := Evaluate(ctx, reg, opts)
	if err != nil {
		return nil, err
	}

	if opts.Metrics != nil {
		opts.Metrics.ObserveReport(rep, time.Since(start))
	}
	logger.Info().
		Int("rules", reg.Len()).
		Int("targets", rep.Summary.Targets).
		Int("findings", rep.Summary.Total).
		Dur("elapsed", time.Since(start)).
		Msg("Run complete")

	return &RunResult{Report: rep, Registry: reg, LoadErrors: loadErrs}, nil
}

// load splits rules.Load's error into fatal errors and per-document errors
func load(ctx context.Context, dir string, opts rules.LoadOptions) (*rules.Registry, *errors.List, error) {
	reg, err := rules.Load(ctx, dir, opts)
	if err == nil {
		return reg, &errors.List{}, nil
	}
	var list *errors.List
	if reg != nil && stderrors.As(err, &list) {
		return reg, list, nil
	}
	return nil, nil, err
}

// Evaluate runs every rule of reg against the targets named by opts
func Evaluate(ctx context.Context, reg *rules.Registry, opts RunOptions) (*report.Report, error) {
	logger := logging.GetLogger("core.evaluate")

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ignores, err := compileIgnores(opts.Ignore)
	if err != nil {
		return nil, err
	}
	specs, collectErrs := collectTargets(fsys, paths, ignores, logger)
	logger.Debug().Int("targets", len(specs)).Int("workers", workers).Msg("Collected targets")

	ordered := dispatcher.Order(reg.Rules())
	ev := &evaluator{
		fsys:        fsys,
		rules:       ordered,
		matcher:     matchers.New(),
		dispatcher:  dispatcher.New(),
		event:       opts.Event,
		maxFileSize: opts.MaxFileSize,
	}

	results := make([][]types.MatchResult, len(specs))
	readErrs := make([]error, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, spec := range specs {
		if gctx.Err() != nil {
			break
		}
		i, spec := i, spec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], readErrs[i] = ev.evaluate(spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targets := make([]string, len(specs))
	var flat []types.MatchResult
	matchErrs := collectErrs
	for i, spec := range specs {
		targets[i] = spec.path
		flat = append(flat, results[i]...)
		if readErrs[i] != nil {
			matchErrs = append(matchErrs, readErrs[i])
		}
	}
	return report.Build(targets, flat, matchErrs), nil
}

// evaluator holds what every worker shares. All fields are read-only.
type evaluator struct {
	fsys        types.FS
	rules       []*rules.Rule
	matcher     *matchers.Matcher
	dispatcher  *dispatcher.Dispatcher
	event       string
	maxFileSize int64
}

// evaluate reads one target and runs the rules in dispatch order
func (e *evaluator) evaluate(spec targetSpec) ([]types.MatchResult, error) {
	target := types.Target{Path: spec.path, Event: e.event}
	if e.maxFileSize <= 0 || spec.size <= e.maxFileSize {
		data, err := e.fsys.ReadFile(spec.path)
		if err != nil {
			return nil, matchError(spec.path, err)
		}
		target.Content = string(data)
		target.HasContent = true
	}

	var results []types.MatchResult
	for _, rule := range e.rules {
		if !e.matcher.Match(rule, target) {
			continue
		}
		results = append(results, types.MatchResult{
			Rule:     rule.Name(),
			Target:   target.Path,
			Matched:  true,
			Findings: e.dispatcher.Dispatch(rule, target),
		})
	}
	return results, nil
}
