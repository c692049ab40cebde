package matchers

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulelint/pkg/pattern"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

func compileRule(t *testing.T, doc *types.Document) *rules.Rule {
	t.Helper()
	c, err := pattern.NewCompiler("")
	require.NoError(t, err)
	if doc.Name == "" {
		doc.Name = "test_rule"
	}
	rule, err := rules.Compile(doc, c)
	require.NoError(t, err)
	return rule
}

func filterRule(t *testing.T, filters ...types.Filter) *rules.Rule {
	return compileRule(t, &types.Document{Filters: filters})
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"main.go":             ".go",
		"src/app.test.ts":     ".test.ts",
		".eslintrc.json":      ".json",
		"dir.d/Makefile":      "",
		".gitignore":          "",
		"rules/010-core.mdc":  ".mdc",
		"./docs/README.md":    ".md",
		"archive.tar.gz":      ".tar.gz",
		"no/extension/here.":  ".",
		"..hidden.config.yml": ".config.yml",
	}
	for in, want := range tests {
		assert.Equal(t, want, Extension(in), in)
	}
}

func TestDir(t *testing.T) {
	tests := map[string]string{
		"main.go":           "",
		"./main.go":         "",
		"src/app.ts":        "src",
		"./src/lib/x.go":    "src/lib",
		"/abs/path/file.md": "/abs/path",
	}
	for in, want := range tests {
		assert.Equal(t, want, Dir(in), in)
	}
}

func TestFileExtensionFilter(t *testing.T) {
	rule := filterRule(t, types.Filter{Type: types.FilterFileExtension, Pattern: `\.mdc$`})
	m := New()

	assert.True(t, m.Match(rule, types.Target{Path: ".cursor/rules/core.mdc"}))
	assert.False(t, m.Match(rule, types.Target{Path: "src/app.ts"}))
	assert.False(t, m.Match(rule, types.Target{Path: "mdc"}))
}

func TestContentFilter(t *testing.T) {
	rule := filterRule(t, types.Filter{Type: types.FilterContent, Pattern: `(?m)^import `})
	m := New()

	assert.True(t, m.Match(rule, types.NewFileTarget("a.py", "#!/usr/bin/env python\nimport os\n")))
	assert.False(t, m.Match(rule, types.NewFileTarget("a.py", "print(1)\n")))
	assert.False(t, m.Match(rule, types.Target{Path: "a.py"}), "absent content never matches")
}

func TestEventFilter(t *testing.T) {
	rule := filterRule(t, types.Filter{Type: types.FilterEvent, Pattern: "file_create"})
	regexRule := filterRule(t, types.Filter{Type: types.FilterEvent, Pattern: "^file_(create|modify)$"})
	m := New()

	assert.True(t, m.Match(rule, types.Target{Path: "x.go", Event: "file_create"}))
	assert.False(t, m.Match(rule, types.Target{Path: "x.go", Event: "file_delete"}))
	assert.False(t, m.Match(rule, types.Target{Path: "x.go"}), "static scans carry no event")

	assert.True(t, m.Match(regexRule, types.Target{Path: "x.go", Event: "file_modify"}))
	assert.False(t, m.Match(regexRule, types.Target{Path: "x.go", Event: "file_modified"}))
}

func TestDirectoryFilter(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"src", "src/main.go", true},
		{"src", "src/lib/util.go", true},
		{"src/", "src/lib/util.go", true},
		{"./src", "src/main.go", true},
		{"src", "srcs/main.go", false},
		{"src", "main.go", false},
		{"src/*/internal", "src/api/internal/x.go", true},
		{"src/*/internal", "src/api/v1/internal/x.go", false},
		{"**/testdata", "pkg/rules/testdata/a.mdc", true},
		{"**/testdata", "pkg/rules/a.mdc", false},
	}
	m := New()
	for _, tt := range tests {
		rule := filterRule(t, types.Filter{Type: types.FilterDirectory, Pattern: tt.pattern})
		assert.Equal(t, tt.want, m.Match(rule, types.Target{Path: tt.path}), "%s vs %s", tt.pattern, tt.path)
	}
}

func TestMatchIsCaseSensitive(t *testing.T) {
	rule := filterRule(t, types.Filter{Type: types.FilterDirectory, Pattern: "Docs"})
	m := New()
	assert.True(t, m.Match(rule, types.Target{Path: "Docs/a.md"}))
	assert.False(t, m.Match(rule, types.Target{Path: "docs/a.md"}))
}

func TestFiltersAreAnded(t *testing.T) {
	rule := filterRule(t,
		types.Filter{Type: types.FilterFileExtension, Pattern: `\.go$`},
		types.Filter{Type: types.FilterContent, Pattern: `panic\(`},
	)
	m := New()

	assert.True(t, m.Match(rule, types.NewFileTarget("main.go", "panic(err)")))
	assert.False(t, m.Match(rule, types.NewFileTarget("main.go", "return err")))
	assert.False(t, m.Match(rule, types.NewFileTarget("main.rs", "panic(err)")))
}

func TestGlobsGate(t *testing.T) {
	rule := compileRule(t, &types.Document{
		Globs:   "src/**/*.ts, *.tsx",
		Filters: []types.Filter{{Type: types.FilterFileExtension, Pattern: `\.tsx?$`}},
	})
	m := New()

	assert.True(t, m.Match(rule, types.Target{Path: "src/a/b.ts"}))
	assert.True(t, m.Match(rule, types.Target{Path: "web/App.tsx"}), "slashless globs match the base name")
	assert.False(t, m.Match(rule, types.Target{Path: "lib/b.ts"}))
}

func TestAlwaysApplyScenario(t *testing.T) {
	rule := compileRule(t, &types.Document{
		AlwaysApply: true,
		Globs:       "*.never",
		Filters:     []types.Filter{{Type: types.FilterEvent, Pattern: "never"}},
	})
	assert.True(t, New().Match(rule, types.Target{Path: "anything"}))
}

func TestMatchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	m := New()

	genTarget := gopter.CombineGens(
		gen.RegexMatch(`([a-z]{1,6}/){0,3}[a-z]{1,8}(\.[a-z]{1,3}){0,2}`),
		gen.AlphaString(),
		gen.Bool(),
		gen.OneConstOf("", "file_create", "file_delete"),
	).Map(func(v []interface{}) types.Target {
		return types.Target{
			Path:       v[0].(string),
			Content:    v[1].(string),
			HasContent: v[2].(bool),
			Event:      v[3].(string),
		}
	})

	restrictive := []types.Filter{
		{Type: types.FilterFileExtension, Pattern: `^\.nomatch$`},
		{Type: types.FilterContent, Pattern: `^$x`},
		{Type: types.FilterEvent, Pattern: "never_fired"},
		{Type: types.FilterDirectory, Pattern: "nowhere"},
	}

	always := compileRule(t, &types.Document{AlwaysApply: true, Filters: restrictive})
	properties.Property("alwaysApply rules match every target", prop.ForAll(
		func(target types.Target) bool {
			return m.Match(always, target)
		},
		genTarget,
	))

	empty := compileRule(t, &types.Document{})
	emptyWithGlobs := compileRule(t, &types.Document{Globs: "**"})
	properties.Property("rules without filters never match", prop.ForAll(
		func(target types.Target) bool {
			return !m.Match(empty, target) && !m.Match(emptyWithGlobs, target)
		},
		genTarget,
	))

	properties.TestingRun(t)
}
