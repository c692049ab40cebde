package pattern

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiler_RE2(t *testing.T) {
	c, err := NewCompiler("")
	require.NoError(t, err)
	assert.Equal(t, EngineRE2, c.Engine())

	re, err := c.Regex(`\.mdc$`)
	require.NoError(t, err)
	assert.True(t, re.MatchString(".mdc"))
	assert.False(t, re.MatchString(".ts"))
	assert.Equal(t, `\.mdc$`, re.String())

	_, err = c.Regex(`foo(?!bar)`)
	assert.Error(t, err, "re2 has no lookahead")

	_, err = c.Regex(`(unclosed`)
	assert.Error(t, err)
}

func TestCompiler_ECMAScript(t *testing.T) {
	c, err := NewCompiler(EngineECMAScript)
	require.NoError(t, err)

	re, err := c.Regex(`console\.log(?!\(\s*\))`)
	require.NoError(t, err)
	assert.True(t, re.MatchString(`console.log("x")`))
	assert.False(t, re.MatchString(`console.log()`))
}

func TestCompiler_UnknownEngine(t *testing.T) {
	_, err := NewCompiler("pcre")
	assert.Error(t, err)
}

func TestGlob(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.ts", "main.ts", true},
		{"*.ts", "src/app/main.ts", true},
		{"*.ts", "main.tsx", false},
		{"src/*.ts", "src/main.ts", true},
		{"src/*.ts", "src/app/main.ts", false},
		{"src/**/*.ts", "src/main.ts", true},
		{"src/**/*.ts", "src/app/deep/main.ts", true},
		{"**/*.{ts,tsx}", "a/b.tsx", true},
		{"**/*.{ts,tsx}", "a/b.js", false},
		{"src/**", "src/a/b", true},
		{"file?.go", "file1.go", true},
		{"file[0-9].go", "file7.go", true},
		{"file[!0-9].go", "file7.go", false},
		{".cursor/rules/*.mdc", "./.cursor/rules/010-core.mdc", true},
		{"docs", "a/docs", true},
		{`a\*b`, "a*b", true},
		{`a\*b`, "axb", false},
		{"ünï/*.md", "ünï/x.md", true},
		{"**/.git/**", ".git/objects", true},
		{"**/.git/**", "/home/me/proj/.git/HEAD", true},
		{"**/.git/**", "src/git/HEAD", false},
		{"a/**/b/**/c.go", "a/b/c.go", true},
		{"a/**/b/**/c.go", "a/x/b/y/z/c.go", true},
		{"a/**/b/**/c.go", "a/x/c.go", false},
		{"{src,lib}/**/*.go", "lib/x.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			g, err := CompileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Match(tt.path))
		})
	}
}

func TestGlob_Invalid(t *testing.T) {
	for _, p := range []string{"", "[abc", "{a,b", "a}", `trailing\`, "[]"} {
		_, err := CompileGlob(p)
		assert.Error(t, err, p)
	}
	assert.Panics(t, func() { MustCompileGlob("[") })
}

func TestZeroDirVariants(t *testing.T) {
	assert.Equal(t, []string{"*.go"}, zeroDirVariants("*.go"))
	assert.Equal(t, []string{"**/x", "x"}, zeroDirVariants("**/x"))
	assert.ElementsMatch(t,
		[]string{"a/**/b/**/c", "a/b/**/c", "a/**/b/c", "a/b/c"},
		zeroDirVariants("a/**/b/**/c"))
}

func TestSplitGlobList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"*.ts", []string{"*.ts"}},
		{"*.ts, *.tsx", []string{"*.ts", "*.tsx"}},
		{"**/*.{ts,tsx},docs/**", []string{"**/*.{ts,tsx}", "docs/**"}},
		{" , *.md ,", []string{"*.md"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitGlobList(tt.in), tt.in)
	}
}

func TestECMARegexTimeoutLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	c := &Compiler{engine: EngineECMAScript, timeout: 20 * time.Millisecond}
	re, err := c.Regex(`^(a+)+$`)
	require.NoError(t, err)

	assert.False(t, re.MatchString(strings.Repeat("a", 40)+"!"))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "regex match failed")
	assert.Contains(t, buf.String(), `"pattern":"^(a+)+$"`)

	buf.Reset()
	assert.True(t, re.MatchString("aaa"))
	assert.Empty(t, buf.String())
}
