package rules

import (
	"fmt"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/pattern"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// Rule is a document with all of its patterns compiled
type Rule struct {
	Doc        *types.Document
	Globs      []*pattern.Glob
	Filters    []CompiledFilter
	Conditions [][]pattern.Regex // indexed by action, then condition
}

// CompiledFilter pairs a filter with its compiled pattern. Regex is set for
// regex filter types, Glob for directory filters.
type CompiledFilter struct {
	types.Filter
	Regex pattern.Regex
	Glob  *pattern.Glob
}

// Name returns the rule name
func (r *Rule) Name() string {
	return r.Doc.Name
}

// Compile compiles every pattern of doc. Failures are returned as an
// *errors.List of PatternErrors.
func Compile(doc *types.Document, c *pattern.Compiler) (*Rule, error) {
	r, errs := compile(doc, c, nil)
	if errs.Len() > 0 {
		return nil, errs
	}
	return r, nil
}

func compile(doc *types.Document, c *pattern.Compiler, lines map[string]int) (*Rule, *errors.List) {
	errs := &errors.List{}
	fail := func(field, pat string, err error) {
		errs.Add(errors.Wrapf(err, errors.ErrPattern, "rule %s: invalid pattern %q in %s", doc.Name, pat, field).
			At(doc.Path, lines[field]).
			WithDetail(errors.DetailRule, doc.Name).
			WithDetail(errors.DetailField, field))
	}

	r := &Rule{Doc: doc}
	for _, g := range pattern.SplitGlobList(doc.Globs) {
		cg, err := pattern.CompileGlob(g)
		if err != nil {
			fail("globs", g, err)
			continue
		}
		r.Globs = append(r.Globs, cg)
	}

	for i, f := range doc.Filters {
		if !f.Type.Valid() {
			typeField := fmt.Sprintf("filters[%d].type", i)
			errs.Add(errors.Newf(errors.ErrParse, "rule %s: unknown filter type %q", doc.Name, f.Type).
				At(doc.Path, lines[typeField]).
				WithDetail(errors.DetailRule, doc.Name).
				WithDetail(errors.DetailField, typeField))
			continue
		}
		field := fmt.Sprintf("filters[%d].pattern", i)
		cf := CompiledFilter{Filter: f}
		var err error
		if f.Type.IsGlob() {
			cf.Glob, err = pattern.CompileGlob(f.Pattern)
		} else {
			cf.Regex, err = c.Regex(f.Pattern)
		}
		if err != nil {
			fail(field, f.Pattern, err)
			continue
		}
		r.Filters = append(r.Filters, cf)
	}

	r.Conditions = make([][]pattern.Regex, len(doc.Actions))
	for i, a := range doc.Actions {
		for j, cond := range a.Conditions {
			field := fmt.Sprintf("actions[%d].conditions[%d].pattern", i, j)
			re, err := c.Regex(cond.Pattern)
			if err != nil {
				fail(field, cond.Pattern, err)
				continue
			}
			r.Conditions[i] = append(r.Conditions[i], re)
		}
	}
	return r, errs
}
