package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/rulelint/pkg/errors"
)

// Registry holds the loaded rules of one directory. It is immutable once
// built and safe to share between goroutines.
type Registry struct {
	dir      string
	byName   map[string]*Rule
	rules    []*Rule
	warnings []Warning
}

// NewRegistry builds a registry. Rule names must be unique.
func NewRegistry(dir string, rules []*Rule, warnings []Warning) (*Registry, error) {
	r := &Registry{
		dir:      dir,
		byName:   make(map[string]*Rule, len(rules)),
		warnings: warnings,
	}
	for _, rule := range rules {
		if prev, ok := r.byName[rule.Name()]; ok {
			return nil, duplicateError(rule.Name(), []string{prev.Doc.Path, rule.Doc.Path})
		}
		r.byName[rule.Name()] = rule
		r.rules = append(r.rules, rule)
	}
	sort.Slice(r.rules, func(i, j int) bool {
		return r.rules[i].Doc.Path < r.rules[j].Doc.Path
	})
	return r, nil
}

func duplicateError(name string, paths []string) *errors.LintError {
	sort.Strings(paths)
	return errors.Newf(errors.ErrDuplicateName, "rule name %q is declared by %d documents: %s",
		name, len(paths), strings.Join(paths, ", ")).
		At(paths[0], 0).
		WithDetail(errors.DetailRule, name)
}

// Dir returns the directory the rules were loaded from
func (r *Registry) Dir() string {
	return r.dir
}

// Len returns the number of rules
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Get returns the rule with the given name
func (r *Registry) Get(name string) (*Rule, bool) {
	rule, ok := r.byName[name]
	return rule, ok
}

// Rules returns the rules in path order. The slice must not be modified.
func (r *Registry) Rules() []*Rule {
	if r == nil {
		return nil
	}
	return r.rules
}

// Names returns the sorted rule names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Warnings returns the convention warnings produced while loading
func (r *Registry) Warnings() []Warning {
	if r == nil {
		return nil
	}
	return r.warnings
}

func (r *Registry) String() string {
	return fmt.Sprintf("Registry{dir: %s, rules: %d}", r.dir, len(r.rules))
}
