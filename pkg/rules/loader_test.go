package rules

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rulelint/pkg/config"
	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/pattern"
	"github.com/arthur-debert/rulelint/pkg/testutil"
)

func TestLoadValidDirectory(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "010-core.mdc", testutil.NewRuleDoc("core").Filter("file_extension", `\.go$`))
	rd.AddRule(t, "nested/020-style.md", testutil.NewRuleDoc("style"))
	rd.Add(t, "README.txt", "not a rule")
	rd.AddRule(t, ".hidden/030-secret.mdc", testutil.NewRuleDoc("secret"))

	reg, err := Load(context.Background(), rd.Dir, DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, rd.Dir, reg.Dir())
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"core", "style"}, reg.Names())

	core, ok := reg.Get("core")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(rd.Dir, "010-core.mdc"), core.Doc.Path)
	require.Len(t, core.Filters, 1)
	assert.True(t, core.Filters[0].Regex.MatchString("main.go"))

	_, ok = reg.Get("secret")
	assert.False(t, ok, "hidden directories are skipped")
}

func TestLoadExtensions(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "a.mdc", testutil.NewRuleDoc("a"))
	rd.AddRule(t, "b.md", testutil.NewRuleDoc("b"))

	opts := DefaultLoadOptions()
	opts.Extensions = []string{".mdc"}
	reg, err := Load(context.Background(), rd.Dir, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, reg.Names())
}

func TestLoadMissingVersionKeepsSiblings(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	bad := rd.AddRule(t, "010-bad.mdc", testutil.NewRuleDoc("bad").Version(""))
	rd.AddRule(t, "020-good.mdc", testutil.NewRuleDoc("good"))
	rd.AddRule(t, "030-also_good.mdc", testutil.NewRuleDoc("also_good"))

	reg, err := Load(context.Background(), rd.Dir, DefaultLoadOptions())
	list := errorList(t, err)

	require.Len(t, list.Errors, 1)
	parseErr := list.Errors[0]
	assert.Equal(t, errors.ErrParse, parseErr.Code)
	assert.Equal(t, bad, parseErr.File())
	assert.Equal(t, "metadata.version", parseErr.Details[errors.DetailField])
	assert.Contains(t, parseErr.Error(), "metadata.version")

	require.NotNil(t, reg)
	assert.Equal(t, []string{"also_good", "good"}, reg.Names())
}

func TestLoadDuplicateNames(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	first := rd.AddRule(t, "010-one.mdc", testutil.NewRuleDoc("shared"))
	second := rd.AddRule(t, "020-two.mdc", testutil.NewRuleDoc("shared"))

	reg, err := Load(context.Background(), rd.Dir, DefaultLoadOptions())
	list := errorList(t, err)

	dups := list.ByCode(errors.ErrDuplicateName)
	require.Len(t, dups, 1)
	assert.Equal(t, "shared", dups[0].Details[errors.DetailRule])
	assert.Contains(t, dups[0].Message, first)
	assert.Contains(t, dups[0].Message, second)

	require.NotNil(t, reg)
	assert.Equal(t, 0, reg.Len(), "no usable rule from either document")
}

func TestLoadPatternError(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	path := rd.AddRule(t, "broken.mdc", testutil.NewRuleDoc("broken").
		Filter("file_extension", `\.go$`).
		Filter("content", `func (`))

	reg, err := Load(context.Background(), rd.Dir, DefaultLoadOptions())
	list := errorList(t, err)

	require.Len(t, list.Errors, 1)
	perr := list.Errors[0]
	assert.Equal(t, errors.ErrPattern, perr.Code)
	assert.Equal(t, path, perr.File())
	assert.Equal(t, "broken", perr.Details[errors.DetailRule])
	assert.Equal(t, "filters[1].pattern", perr.Details[errors.DetailField])
	assert.Equal(t, 13, perr.Line())
	assert.Equal(t, 0, reg.Len())
}

func TestLoadUnreadableFile(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	locked := rd.AddRule(t, "locked.mdc", testutil.NewRuleDoc("locked"))
	rd.AddRule(t, "open.mdc", testutil.NewRuleDoc("open"))
	testutil.MakeUnreadable(t, locked)

	reg, err := Load(context.Background(), rd.Dir, DefaultLoadOptions())
	list := errorList(t, err)
	require.Len(t, list.Errors, 1)
	assert.Equal(t, errors.ErrFileAccess, list.Errors[0].Code)
	assert.Equal(t, []string{"open"}, reg.Names())
}

func TestLoadMissingDirectory(t *testing.T) {
	reg, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope"), DefaultLoadOptions())
	assert.Nil(t, reg)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRulesDirNotFound))
}

func TestLoadCancelled(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "a.mdc", testutil.NewRuleDoc("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, rd.Dir, DefaultLoadOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadECMAScriptEngine(t *testing.T) {
	rd := testutil.NewRulesDir(t)
	rd.AddRule(t, "look.mdc", testutil.NewRuleDoc("look").Filter("content", `foo(?!bar)`))

	_, err := Load(context.Background(), rd.Dir, DefaultLoadOptions())
	assert.True(t, errorList(t, err).Has(errors.ErrPattern), "re2 has no lookahead")

	opts := DefaultLoadOptions()
	opts.Engine = pattern.EngineECMAScript
	reg, err := Load(context.Background(), rd.Dir, opts)
	require.NoError(t, err)
	rule, _ := reg.Get("look")
	assert.True(t, rule.Filters[0].Regex.MatchString("foobaz"))
	assert.False(t, rule.Filters[0].Regex.MatchString("foobar"))
}

func TestLoadOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	opts := LoadOptionsFromConfig(cfg)
	assert.Equal(t, cfg.Rules.Extensions, opts.Extensions)
	assert.Equal(t, 120, opts.DescriptionMax)
	assert.Equal(t, "re2", opts.Engine)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	a, _, err := Parse("a.mdc", []byte(testutil.NewRuleDoc("same").String()), ParseOptions{})
	require.NoError(t, err)
	b, _, err := Parse("b.mdc", []byte(testutil.NewRuleDoc("same").String()), ParseOptions{})
	require.NoError(t, err)

	c, _ := pattern.NewCompiler("")
	ra, err := Compile(a, c)
	require.NoError(t, err)
	rb, err := Compile(b, c)
	require.NoError(t, err)

	_, err = NewRegistry("dir", []*Rule{ra, rb}, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateName))
}
