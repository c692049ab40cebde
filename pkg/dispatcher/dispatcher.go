// Package dispatcher executes the actions of matched rules and orders rules
// for dispatch.
package dispatcher

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/rules"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// NoCondition is the Condition index of findings emitted by suggest actions
const NoCondition = -1

// pathShapedRe recognizes patterns anchored on a file extension, like \.mdc$
// or \.(ts|tsx)$
var pathShapedRe = regexp.MustCompile(`\\\.(?:[A-Za-z0-9_-]+|\([A-Za-z0-9_|-]+\))\$$`)

// Dispatcher runs actions. It holds no mutable state.
type Dispatcher struct {
	logger zerolog.Logger
}

// New returns a Dispatcher
func New() *Dispatcher {
	return &Dispatcher{logger: logging.GetLogger("dispatcher")}
}

// Dispatch executes every action of rule against target in declaration order.
// Every condition of a validate action is evaluated.
func (d *Dispatcher) Dispatch(rule *rules.Rule, target types.Target) []types.Finding {
	var findings []types.Finding
	for i, action := range rule.Doc.Actions {
		switch action.Kind {
		case types.ActionSuggest:
			findings = append(findings, types.Finding{
				Target:    target.Path,
				Rule:      rule.Name(),
				Severity:  types.SeverityInfo,
				Message:   action.Message,
				Action:    i,
				Condition: NoCondition,
			})
		case types.ActionValidate, types.ActionReject:
			findings = append(findings, d.validate(rule, i, target)...)
		}
	}
	d.logger.Trace().
		Str("rule", rule.Name()).
		Str("target", target.Path).
		Int("findings", len(findings)).
		Msg("Dispatched")
	return findings
}

func (d *Dispatcher) validate(rule *rules.Rule, actionIdx int, target types.Target) []types.Finding {
	var findings []types.Finding
	action := rule.Doc.Actions[actionIdx]
	for j, cond := range action.Conditions {
		var text string
		switch ResolveTarget(cond) {
		case types.TargetPath:
			text = filepath.ToSlash(target.Path)
		default:
			if !target.HasContent {
				continue
			}
			text = target.Content
		}

		present := rule.Conditions[actionIdx][j].MatchString(text)
		violated := present == (cond.Match == types.MatchForbidden)
		if !violated {
			continue
		}
		findings = append(findings, types.Finding{
			Target:    target.Path,
			Rule:      rule.Name(),
			Severity:  types.SeverityError,
			Message:   cond.Message,
			Action:    actionIdx,
			Condition: j,
		})
	}
	return findings
}

// ResolveTarget returns the text a condition is tested against. Without an
// explicit target, patterns anchored on a file extension or containing a
// slash test the path and everything else tests the content.
func ResolveTarget(cond types.Condition) types.ConditionTarget {
	if cond.Target != types.TargetInferred {
		return cond.Target
	}
	if pathShapedRe.MatchString(cond.Pattern) || strings.Contains(cond.Pattern, "/") {
		return types.TargetPath
	}
	return types.TargetContent
}

// Order returns the rules sorted for dispatch: by filename category, then
// priority high to low, then name. The input is not modified.
func Order(in []*rules.Rule) []*rules.Rule {
	out := make([]*rules.Rule, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Doc, out[j].Doc
		if a.CategoryRank() != b.CategoryRank() {
			return a.CategoryRank() < b.CategoryRank()
		}
		if a.Metadata.Priority.Rank() != b.Metadata.Priority.Rank() {
			return a.Metadata.Priority.Rank() < b.Metadata.Priority.Rank()
		}
		return a.Name < b.Name
	})
	return out
}
