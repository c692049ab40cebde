package core

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/filesystem"
	"github.com/arthur-debert/rulelint/pkg/metrics"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/testutil"
	"github.com/arthur-debert/rulelint/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// frontMatterRule flags .mdc files that do not start with front matter
func frontMatterRule() *testutil.RuleDocBuilder {
	return testutil.NewRuleDoc("front_matter").
		Filter("file_extension", `\.mdc$`).
		Validate(testutil.Cond{Pattern: "^---", Message: "must start with front matter"})
}

func memFS(t *testing.T, files map[string]string) types.FS {
	t.Helper()
	fsys := filesystem.NewMemory()
	for path, content := range files {
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
	return fsys
}

func runOpts(dir string, fsys types.FS, paths ...string) RunOptions {
	return RunOptions{
		RulesDir:   dir,
		Load:       rules.DefaultLoadOptions(),
		Paths:      paths,
		Workers:    4,
		FileSystem: fsys,
	}
}

func TestRunFrontMatterScenario(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())

	fsys := memFS(t, map[string]string{
		"/src/broken.mdc": "no front matter here\n",
		"/src/fine.mdc":   "---\ndescription: ok\n---\n",
		"/src/app.ts":     "export const x = 1\n",
	})

	res, err := Run(context.Background(), runOpts(rd.Dir, fsys, "/src"))
	require.NoError(t, err)
	assert.False(t, res.Failed())

	rep := res.Report
	assert.Equal(t, 3, rep.Summary.Targets)
	assert.Equal(t, 2, rep.Summary.Matches)
	assert.Equal(t, 1, rep.Summary.Errors)
	require.Len(t, rep.Targets, 1)
	assert.Equal(t, "/src/broken.mdc", rep.Targets[0].Path)
	require.Len(t, rep.Targets[0].Rules, 1)
	f := rep.Targets[0].Rules[0].Findings[0]
	assert.Equal(t, "front_matter", f.Rule)
	assert.Equal(t, types.SeverityError, f.Severity)
	assert.Equal(t, "must start with front matter", f.Message)
}

func TestRunNoFindingsStillReports(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())

	res, err := Run(context.Background(), runOpts(rd.Dir, memFS(t, map[string]string{"/src/a.go": "package a"}), "/src"))
	require.NoError(t, err)
	assert.Equal(t, "0 findings in 1 target", res.Report.Summary.String())
}

func TestRunDispatchOrderWithinTarget(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "200-late.mdc", testutil.NewRuleDoc("late").AlwaysApply(true).Suggest("late"))
	rd.AddRule(t, "100-low.mdc", testutil.NewRuleDoc("low").Priority("low").AlwaysApply(true).Suggest("low"))
	rd.AddRule(t, "100-high.mdc", testutil.NewRuleDoc("high").Priority("high").AlwaysApply(true).Suggest("high"))
	rd.AddRule(t, "uncategorized.mdc", testutil.NewRuleDoc("last").AlwaysApply(true).Suggest("last"))

	res, err := Run(context.Background(), runOpts(rd.Dir, memFS(t, map[string]string{"/a.txt": "x"}), "/a.txt"))
	require.NoError(t, err)

	var order []string
	for _, rr := range res.Report.Targets[0].Rules {
		order = append(order, rr.Rule)
	}
	assert.Equal(t, []string{"high", "low", "late", "last"}, order)
}

func TestRunDuplicateNamesRefused(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "a.mdc", testutil.NewRuleDoc("same").AlwaysApply(true).Suggest("a"))
	rd.AddRule(t, "b.mdc", testutil.NewRuleDoc("same").AlwaysApply(true).Suggest("b"))

	res, err := Run(context.Background(), runOpts(rd.Dir, memFS(t, nil), "/"))
	require.Error(t, err)
	assert.Nil(t, res)

	var list *errors.List
	require.ErrorAs(t, err, &list)
	assert.True(t, list.Has(errors.ErrDuplicateName))
}

func TestRunKeepsValidSiblings(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())
	rd.AddRule(t, "002-broken.mdc", testutil.NewRuleDoc("broken").Version("").AlwaysApply(true).Suggest("x"))

	fsys := memFS(t, map[string]string{"/src/a.mdc": "plain\n"})
	res, err := Run(context.Background(), runOpts(rd.Dir, fsys, "/src"))
	require.NoError(t, err)

	assert.True(t, res.Failed())
	assert.True(t, res.LoadErrors.Has(errors.ErrParse))
	assert.Equal(t, []string{"front_matter"}, res.Registry.Names())
	assert.Equal(t, 1, res.Report.Summary.Errors)
}

func TestRunMissingRulesDir(t *testing.T) {
	_, err := Run(context.Background(), runOpts("/definitely/not/here", memFS(t, nil), "/"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRulesDirNotFound))
}

func TestRunUnreadableTargetIsMatchError(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())

	fsys := memFS(t, map[string]string{"/src/a.mdc": "plain\n"})
	res, err := Run(context.Background(), runOpts(rd.Dir, fsys, "/src", "/src/gone.mdc"))
	require.NoError(t, err)

	assert.True(t, res.Failed())
	require.Len(t, res.Report.MatchErrors, 1)
	me := res.Report.MatchErrors[0]
	assert.Equal(t, "/src/gone.mdc", me.Target)
	assert.Equal(t, string(errors.ErrMatch), me.Code)
	assert.True(t, strings.HasPrefix(me.Message, "target does not exist"))
	// The readable target was still evaluated
	assert.Equal(t, 1, res.Report.Summary.Errors)
}

func TestRunUnreadableFileOnDisk(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())

	src := t.TempDir()
	testutil.CreateFile(t, src, "ok.mdc", "plain\n")
	locked := testutil.CreateFile(t, src, "locked.mdc", "plain\n")
	testutil.MakeUnreadable(t, locked)

	opts := runOpts(rd.Dir, nil, src)
	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Report.MatchErrors, 1)
	assert.Equal(t, normalizePath(locked), res.Report.MatchErrors[0].Target)
	assert.True(t, strings.HasPrefix(res.Report.MatchErrors[0].Message, "cannot read target"))
	assert.Equal(t, 1, res.Report.Summary.Errors)
}

func TestRunIgnoreGlobs(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "all.mdc", testutil.NewRuleDoc("all").AlwaysApply(true).Suggest("seen"))

	fsys := memFS(t, map[string]string{
		"/p/main.go":                 "package main",
		"/p/node_modules/x/index.js": "module.exports = 1",
		"/p/.git/HEAD":               "ref: refs/heads/main",
		"/p/gen/out.pb.go":           "package gen",
	})
	opts := runOpts(rd.Dir, fsys, "/p")
	opts.Ignore = []string{"**/node_modules/**", "**/.git/**", "*.pb.go"}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Report.Targets, 1)
	assert.Equal(t, "/p/main.go", res.Report.Targets[0].Path)
	assert.Equal(t, 1, res.Report.Summary.Targets)
}

func TestRunInvalidIgnoreGlob(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	opts := runOpts(rd.Dir, memFS(t, nil), "/")
	opts.Ignore = []string{"[]"}
	_, err := Run(context.Background(), opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRunMaxFileSizeMatchesByPathOnly(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "todo.mdc", testutil.NewRuleDoc("todo").
		Filter("content", "TODO").
		Suggest("resolve the TODO"))
	rd.AddRule(t, "go.mdc", testutil.NewRuleDoc("go_files").
		Filter("file_extension", `\.go$`).
		Suggest("go file"))

	fsys := memFS(t, map[string]string{
		"/s/small.go": "// TODO",
		"/s/big.go":   "// TODO" + strings.Repeat("x", 100),
	})
	opts := runOpts(rd.Dir, fsys, "/s")
	opts.MaxFileSize = 50

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)

	rulesFor := map[string][]string{}
	for _, tr := range res.Report.Targets {
		for _, rr := range tr.Rules {
			rulesFor[tr.Path] = append(rulesFor[tr.Path], rr.Rule)
		}
	}
	assert.Equal(t, []string{"go_files"}, rulesFor["/s/big.go"])
	assert.ElementsMatch(t, []string{"go_files", "todo"}, rulesFor["/s/small.go"])
}

func TestRunEventTargets(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "commit.mdc", testutil.NewRuleDoc("on_save").
		Filter("event", "file_save").
		Suggest("saved"))

	fsys := memFS(t, map[string]string{"/a.go": "package a"})

	res, err := Run(context.Background(), runOpts(rd.Dir, fsys, "/a.go"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Report.Summary.Matches, "no event, no match")

	opts := runOpts(rd.Dir, fsys, "/a.go")
	opts.Event = "file_save"
	res, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Summary.Infos)
}

func TestRunCancelled(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, runOpts(rd.Dir, memFS(t, map[string]string{"/a.mdc": "x"}), "/"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRecordsMetrics(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())

	rec := metrics.New()
	opts := runOpts(rd.Dir, memFS(t, map[string]string{"/a.mdc": "x"}), "/")
	opts.Metrics = rec
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["rulelint_rules_loaded"])
	assert.Equal(t, 1.0, values["rulelint_targets_total"])
	assert.Equal(t, 1.0, values["rulelint_findings_total"])
}

func TestRunOptionsFromConfig(t *testing.T) {
	cfg := defaultConfig(t)
	opts := RunOptionsFromConfig(cfg, []string{"src"}, "file_save")
	assert.Equal(t, cfg.Rules.Dir, opts.RulesDir)
	assert.Equal(t, []string{"src"}, opts.Paths)
	assert.Equal(t, "file_save", opts.Event)
	assert.Equal(t, cfg.Run.Workers, opts.Workers)
	assert.Equal(t, cfg.Run.Ignore, opts.Ignore)
	assert.Equal(t, cfg.Run.MaxFileSize, opts.MaxFileSize)
	assert.Equal(t, cfg.Regex.Engine, opts.Load.Engine)
}

// Running the pipeline twice on the same inputs, with any worker count,
// produces byte-identical reports.
func TestRunDeterministicProperty(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "001-front-matter.mdc", frontMatterRule())
	rd.AddRule(t, "002-todo.mdc", testutil.NewRuleDoc("todo").Filter("content", "TODO").Suggest("resolve"))
	rd.AddRule(t, "003-all.mdc", testutil.NewRuleDoc("all").AlwaysApply(true).
		Reject(testutil.Cond{Pattern: "secret", Message: "no secrets"}))

	files := map[string]string{}
	for i := 0; i < 30; i++ {
		name := "/w/" + string(rune('a'+i%26)) + strings.Repeat("x", i/26)
		switch i % 3 {
		case 0:
			files[name+".mdc"] = "plain TODO\n"
		case 1:
			files[name+".go"] = "package secret\n"
		default:
			files[name+".mdc"] = "---\n---\n"
		}
	}
	fsys := memFS(t, files)

	render := func(workers int) string {
		opts := runOpts(rd.Dir, fsys, "/w")
		opts.Workers = workers
		res, err := Run(context.Background(), opts)
		require.NoError(t, err)
		data, err := json.Marshal(res.Report)
		require.NoError(t, err)
		return string(data)
	}
	baseline := render(1)

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 15
	properties := gopter.NewProperties(params)
	properties.Property("report independent of workers", prop.ForAll(
		func(workers int) bool {
			return render(workers) == baseline
		},
		gen.IntRange(1, 16),
	))
	properties.TestingRun(t)
}
