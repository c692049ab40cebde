package pattern

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Glob is a compiled glob pattern
type Glob struct {
	pattern string
	// variants holds the pattern and its forms with "**/" matching zero
	// directories
	variants []glob.Glob
	baseName bool
}

// CompileGlob compiles a slash separated glob
func CompileGlob(pattern string) (*Glob, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty glob")
	}
	if err := checkGlobSyntax(pattern); err != nil {
		return nil, err
	}

	g := &Glob{
		pattern:  pattern,
		baseName: !strings.Contains(pattern, "/"),
	}
	for _, v := range zeroDirVariants(pattern) {
		compiled, err := glob.Compile(v, '/')
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		g.variants = append(g.variants, compiled)
	}
	return g, nil
}

// MustCompileGlob is CompileGlob for patterns known to be valid
func MustCompileGlob(pattern string) *Glob {
	g, err := CompileGlob(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// String returns the source pattern
func (g *Glob) String() string {
	return g.pattern
}

// Match reports whether the slash separated path matches
func (g *Glob) Match(p string) bool {
	p = strings.TrimPrefix(p, "./")
	if g.matchAny(p) {
		return true
	}
	return g.baseName && g.matchAny(path.Base(p))
}

func (g *Glob) matchAny(p string) bool {
	for _, v := range g.variants {
		if v.Match(p) {
			return true
		}
	}
	return false
}

// zeroDirVariants returns p followed by every form obtained by dropping a
// leading "**/" or collapsing "/**/" to "/". gobwas/glob requires the
// separator around "**" to be present.
func zeroDirVariants(p string) []string {
	seen := map[string]bool{p: true}
	out := []string{p}
	for i := 0; i < len(out); i++ {
		s := out[i]
		var next []string
		if strings.HasPrefix(s, "**/") {
			next = append(next, s[3:])
		}
		for j := strings.Index(s, "/**/"); j >= 0; {
			next = append(next, s[:j]+s[j+3:])
			k := strings.Index(s[j+1:], "/**/")
			if k < 0 {
				break
			}
			j += k + 1
		}
		for _, n := range next {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// checkGlobSyntax rejects what gobwas/glob reads as literal text: a "}"
// without an opening brace and a trailing backslash
func checkGlobSyntax(p string) error {
	depth := 0
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			if i+1 >= len(p) {
				return fmt.Errorf("glob %q: trailing backslash", p)
			}
			i++
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return fmt.Errorf("glob %q: unmatched }", p)
			}
			depth--
		}
	}
	return nil
}

// SplitGlobList splits a comma separated glob list, keeping commas inside
// braces, and drops empty entries.
func SplitGlobList(s string) []string {
	var out []string
	depth := 0
	start := 0
	flush := func(end int) {
		if item := strings.TrimSpace(s[start:end]); item != "" {
			out = append(out, item)
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}
