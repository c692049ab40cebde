package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Cond is a validate condition for RuleDocBuilder. Empty Match and Target
// are left out of the document.
type Cond struct {
	Pattern string
	Message string
	Match   string
	Target  string
}

type filterEntry struct {
	kind, pattern string
}

type actionEntry struct {
	kind    string
	message string
	conds   []Cond
}

// RuleDocBuilder builds the text of a valid rule document. Every setter
// returns the builder so documents read as a single expression.
type RuleDocBuilder struct {
	description string
	globs       string
	alwaysApply bool
	name        string
	ruleDesc    string
	filters     []filterEntry
	actions     []actionEntry
	priority    string
	version     string
	tags        []string
	body        string
	omitExample bool
}

// NewRuleDoc starts a document for rule name with medium priority, version
// 1.0.0, one example and no filters or actions.
func NewRuleDoc(name string) *RuleDocBuilder {
	return &RuleDocBuilder{
		description: "Test rule " + name,
		name:        name,
		ruleDesc:    "Checks " + name,
		priority:    "medium",
		version:     "1.0.0",
	}
}

func (b *RuleDocBuilder) Description(s string) *RuleDocBuilder { b.description = s; return b }
func (b *RuleDocBuilder) Globs(s string) *RuleDocBuilder       { b.globs = s; return b }
func (b *RuleDocBuilder) AlwaysApply(v bool) *RuleDocBuilder   { b.alwaysApply = v; return b }
func (b *RuleDocBuilder) Priority(p string) *RuleDocBuilder    { b.priority = p; return b }
func (b *RuleDocBuilder) Tags(tags ...string) *RuleDocBuilder  { b.tags = tags; return b }
func (b *RuleDocBuilder) Body(md string) *RuleDocBuilder       { b.body = md; return b }

// Version sets metadata.version, an empty version leaves the field out
func (b *RuleDocBuilder) Version(v string) *RuleDocBuilder { b.version = v; return b }

// WithoutExamples writes an empty examples list
func (b *RuleDocBuilder) WithoutExamples() *RuleDocBuilder { b.omitExample = true; return b }

// Filter appends a filter
func (b *RuleDocBuilder) Filter(kind, pattern string) *RuleDocBuilder {
	b.filters = append(b.filters, filterEntry{kind: kind, pattern: pattern})
	return b
}

// Validate appends a validate action
func (b *RuleDocBuilder) Validate(conds ...Cond) *RuleDocBuilder {
	b.actions = append(b.actions, actionEntry{kind: "validate", conds: conds})
	return b
}

// Reject appends a reject action
func (b *RuleDocBuilder) Reject(conds ...Cond) *RuleDocBuilder {
	b.actions = append(b.actions, actionEntry{kind: "reject", conds: conds})
	return b
}

// Suggest appends a suggest action
func (b *RuleDocBuilder) Suggest(message string) *RuleDocBuilder {
	b.actions = append(b.actions, actionEntry{kind: "suggest", message: message})
	return b
}

// String renders the document
func (b *RuleDocBuilder) String() string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "description: %s\n", b.description)
	fmt.Fprintf(&sb, "globs: %s\n", b.globs)
	fmt.Fprintf(&sb, "alwaysApply: %t\n", b.alwaysApply)
	sb.WriteString("---\n")
	sb.WriteString(b.body)
	sb.WriteString("<rule>\n")
	fmt.Fprintf(&sb, "name: %s\n", b.name)
	fmt.Fprintf(&sb, "description: %s\n", quote(b.ruleDesc))

	if len(b.filters) == 0 {
		sb.WriteString("filters: []\n")
	} else {
		sb.WriteString("filters:\n")
		for _, f := range b.filters {
			fmt.Fprintf(&sb, "  - type: %s\n    pattern: %s\n", f.kind, quote(f.pattern))
		}
	}

	if len(b.actions) == 0 {
		sb.WriteString("actions: []\n")
	} else {
		sb.WriteString("actions:\n")
		for _, a := range b.actions {
			fmt.Fprintf(&sb, "  - type: %s\n", a.kind)
			if a.message != "" {
				fmt.Fprintf(&sb, "    message: %s\n", quote(a.message))
			}
			if len(a.conds) > 0 {
				sb.WriteString("    conditions:\n")
			}
			for _, c := range a.conds {
				fmt.Fprintf(&sb, "      - pattern: %s\n        message: %s\n", quote(c.Pattern), quote(c.Message))
				if c.Match != "" {
					fmt.Fprintf(&sb, "        match: %s\n", c.Match)
				}
				if c.Target != "" {
					fmt.Fprintf(&sb, "        target: %s\n", c.Target)
				}
			}
		}
	}

	if b.omitExample {
		sb.WriteString("examples: []\n")
	} else {
		sb.WriteString("examples:\n  - input: \"bad\"\n    output: \"good\"\n")
	}

	sb.WriteString("metadata:\n")
	fmt.Fprintf(&sb, "  priority: %s\n", b.priority)
	if b.version != "" {
		fmt.Fprintf(&sb, "  version: %s\n", b.version)
	}
	if len(b.tags) > 0 {
		fmt.Fprintf(&sb, "  tags: [%s]\n", strings.Join(b.tags, ", "))
	}
	sb.WriteString("</rule>\n")
	return sb.String()
}

// quote renders s as a single quoted YAML scalar
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// RulesDir is a temporary rules directory
type RulesDir struct {
	Dir string
}

// NewRulesDir creates an empty rules directory under t.TempDir()
func NewRulesDir(t *testing.T) *RulesDir {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "rules")
	require.NoError(t, os.MkdirAll(dir, 0755))
	return &RulesDir{Dir: dir}
}

// Add writes raw content to filename inside the directory
func (r *RulesDir) Add(t *testing.T, filename, content string) string {
	t.Helper()
	return CreateFile(t, r.Dir, filename, content)
}

// AddRule writes a built document to filename
func (r *RulesDir) AddRule(t *testing.T, filename string, b *RuleDocBuilder) string {
	t.Helper()
	return r.Add(t, filename, b.String())
}
