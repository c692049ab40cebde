// Package matchers decides whether a rule applies to a target.
//
// A rule applies when every one of its filters matches. alwaysApply rules
// apply to every target, and a rule with no filters applies to none.
// Non-empty front matter globs are an extra gate on the target path.
package matchers

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// Matcher evaluates rule filters. It holds no mutable state and can be
// shared between goroutines.
type Matcher struct {
	logger zerolog.Logger
}

// New returns a Matcher
func New() *Matcher {
	return &Matcher{logger: logging.GetLogger("matchers")}
}

// Match reports whether rule applies to target
func (m *Matcher) Match(rule *rules.Rule, target types.Target) bool {
	if rule.Doc.AlwaysApply {
		return true
	}
	if len(rule.Filters) == 0 {
		return false
	}

	p := filepath.ToSlash(target.Path)
	if len(rule.Globs) > 0 && !matchAnyGlob(rule, p) {
		m.logger.Trace().Str("rule", rule.Name()).Str("target", p).Msg("Excluded by globs")
		return false
	}

	for i, f := range rule.Filters {
		if !MatchFilter(f, target) {
			m.logger.Trace().
				Str("rule", rule.Name()).
				Str("target", p).
				Int("filter", i).
				Str("type", string(f.Type)).
				Msg("Filter did not match")
			return false
		}
	}
	return true
}

func matchAnyGlob(rule *rules.Rule, p string) bool {
	for _, g := range rule.Globs {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// MatchFilter evaluates a single compiled filter
func MatchFilter(f rules.CompiledFilter, target types.Target) bool {
	p := filepath.ToSlash(target.Path)
	switch f.Type {
	case types.FilterFileExtension:
		return f.Regex.MatchString(Extension(p))
	case types.FilterContent:
		return target.HasContent && f.Regex.MatchString(target.Content)
	case types.FilterEvent:
		if target.Event == "" {
			return false
		}
		return target.Event == f.Pattern || f.Regex.MatchString(target.Event)
	case types.FilterDirectory:
		return matchDirectory(f, Dir(p))
	default:
		return false
	}
}

func matchDirectory(f rules.CompiledFilter, dir string) bool {
	prefix := strings.TrimSuffix(strings.TrimPrefix(f.Pattern, "./"), "/")
	if prefix != "" && (dir == prefix || strings.HasPrefix(dir, prefix+"/")) {
		return true
	}
	return f.Glob.Match(dir)
}

// Extension returns the extension of the base name of p, starting at the
// first dot that is not a leading dot: a/b.test.ts -> .test.ts,
// .eslintrc.json -> .json, Makefile -> "".
func Extension(p string) string {
	base := path.Base(filepath.ToSlash(p))
	if i := strings.IndexByte(strings.TrimLeft(base, "."), '.'); i >= 0 {
		lead := len(base) - len(strings.TrimLeft(base, "."))
		return base[lead+i:]
	}
	return ""
}

// Dir returns the slash separated directory component of p, "" for a bare
// file name
func Dir(p string) string {
	d := path.Dir(strings.TrimPrefix(filepath.ToSlash(p), "./"))
	if d == "." {
		return ""
	}
	return d
}
