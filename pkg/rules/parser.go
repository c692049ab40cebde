package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/types"
)

const (
	frontMatterMarker = "---"
	ruleOpenTag       = "<rule>"
	ruleCloseTag      = "</rule>"

	// DefaultDescriptionMax is the conventional front matter description limit
	DefaultDescriptionMax = 120
)

var (
	nameRe     = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	categoryRe = regexp.MustCompile(`^(\d+)`)
	yamlLineRe = regexp.MustCompile(`line (\d+)`)
)

// Front matter keys, all required
const (
	keyDescription = "description"
	keyGlobs       = "globs"
	keyAlwaysApply = "alwaysApply"
)

var frontMatterKeys = []string{keyDescription, keyGlobs, keyAlwaysApply}

// ParseOptions tune document validation
type ParseOptions struct {
	// DescriptionMax is the description length above which a warning is
	// produced. Zero means DefaultDescriptionMax.
	DescriptionMax int
}

// Warning is a convention violation that does not reject the document
type Warning struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}

// Parse parses a single rule document. On failure the returned error is an
// *errors.List holding every problem found and the document is nil.
func Parse(path string, data []byte, opts ParseOptions) (*types.Document, []Warning, error) {
	pd := parse(path, data, opts)
	if pd.errs.Len() > 0 {
		return nil, pd.warnings, &pd.errs
	}
	return pd.doc, pd.warnings, nil
}

// parsed is a document together with the file lines of its fields
type parsed struct {
	doc      *types.Document
	lines    map[string]int
	warnings []Warning
	errs     errors.List
}

type parser struct {
	path string
	opts ParseOptions
	// offset is the file line of the <rule> tag; YAML line n is file line offset+n
	offset int
	*parsed
}

func parse(path string, data []byte, opts ParseOptions) *parsed {
	if opts.DescriptionMax <= 0 {
		opts.DescriptionMax = DefaultDescriptionMax
	}
	p := &parser{
		path:   path,
		opts:   opts,
		parsed: &parsed{lines: make(map[string]int)},
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	doc := &types.Document{Path: path, Category: categoryOf(path)}
	bodyStart, ok := p.parseFrontMatter(lines, doc)
	if ok {
		p.parseBody(lines[bodyStart:], bodyStart, doc)
	}
	if p.errs.Len() == 0 {
		p.doc = doc
	}
	return p.parsed
}

// categoryOf returns the numeric filename prefix, or types.NoCategory
func categoryOf(path string) int {
	m := categoryRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return types.NoCategory
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return types.NoCategory
	}
	return n
}

func (p *parser) fail(line int, field, format string, args ...interface{}) {
	err := errors.Newf(errors.ErrParse, format, args...).At(p.path, line)
	if field != "" {
		err.WithDetail(errors.DetailField, field)
	}
	p.errs.Add(err)
}

func (p *parser) warn(line int, format string, args ...interface{}) {
	p.warnings = append(p.warnings, Warning{File: p.path, Line: line, Message: fmt.Sprintf(format, args...)})
}

// line converts a YAML node position to a file line
func (p *parser) line(n *yaml.Node) int {
	if n == nil {
		return p.offset
	}
	return p.offset + n.Line
}

func (p *parser) parseFrontMatter(lines []string, doc *types.Document) (int, bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterMarker {
		p.fail(1, "front matter", "missing front matter: the first line must be %q", frontMatterMarker)
		return 0, false
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterMarker {
			end = i
			break
		}
	}
	if end < 0 {
		p.fail(1, "front matter", "front matter is not closed with %q", frontMatterMarker)
		return 0, false
	}

	seen := make(map[string]int)
	for i := 1; i < end; i++ {
		lineNo := i + 1
		raw := lines[i]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		idx := strings.Index(raw, ":")
		if idx < 0 {
			p.fail(lineNo, "front matter", "front matter line must be \"key: value\", got %q", raw)
			continue
		}
		key := strings.TrimSpace(raw[:idx])
		value := unquote(strings.TrimSpace(raw[idx+1:]))
		if first, dup := seen[key]; dup {
			p.fail(lineNo, key, "duplicate front matter field %q (first set on line %d)", key, first)
			continue
		}
		seen[key] = lineNo

		switch key {
		case keyDescription:
			doc.Description = value
		case keyGlobs:
			doc.Globs = value
		case keyAlwaysApply:
			b, err := strconv.ParseBool(value)
			if err != nil {
				p.fail(lineNo, key, "front matter alwaysApply must be true or false, got %q", value)
				continue
			}
			doc.AlwaysApply = b
		default:
			p.fail(lineNo, key, "unknown front matter field %q", key)
		}
	}

	for _, key := range frontMatterKeys {
		if _, ok := seen[key]; !ok {
			p.fail(1, key, "front matter is missing required field %q", key)
		}
	}
	if lineNo, ok := seen[keyDescription]; ok {
		n := utf8.RuneCountInString(doc.Description)
		switch {
		case n == 0:
			p.fail(lineNo, keyDescription, "front matter description must not be empty")
		case n > p.opts.DescriptionMax:
			p.warn(lineNo, "description is %d characters, longer than the conventional %d", n, p.opts.DescriptionMax)
		}
	}
	p.lines[keyGlobs] = seen[keyGlobs]

	return end + 1, true
}

// unquote strips one level of matching single or double quotes
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1]
	}
	return s
}

// parseBody locates the single rule block. base is the index of the first
// body line within the whole file. Tag lines indented deeper than the
// opening tag belong to YAML block scalars inside the rule block.
func (p *parser) parseBody(lines []string, base int, doc *types.Document) {
	open, closing := -1, -1
	openIndent := 0
	for i, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed != ruleOpenTag && trimmed != ruleCloseTag {
			continue
		}
		indent := len(l) - len(strings.TrimLeft(l, " \t"))
		if open >= 0 && indent > openIndent {
			continue
		}
		switch trimmed {
		case ruleOpenTag:
			if open >= 0 {
				p.fail(base+i+1, "rule", "more than one %s block (first on line %d)", ruleOpenTag, base+open+1)
				return
			}
			open, openIndent = i, indent
		case ruleCloseTag:
			if open >= 0 && closing < 0 {
				closing = i
			}
		}
	}
	if open < 0 {
		p.fail(base+1, "rule", "missing %s block", ruleOpenTag)
		return
	}
	if closing < 0 {
		p.fail(base+open+1, "rule", "%s block is not closed with %s", ruleOpenTag, ruleCloseTag)
		return
	}

	doc.Body = joinLines(lines[:open])
	doc.Footer = joinLines(lines[closing+1:])
	p.offset = base + open + 1
	p.decodeBlock(strings.Join(lines[open+1:closing], "\n"), doc)
}

func joinLines(lines []string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *parser) decodeBlock(block string, doc *types.Document) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(block), &root); err != nil {
		line := p.offset
		if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
			n, _ := strconv.Atoi(m[1])
			line += n
		}
		p.fail(line, "rule", "invalid YAML in rule block: %v", err)
		return
	}
	if len(root.Content) == 0 {
		p.fail(p.offset, "rule", "rule block is empty")
		return
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		p.fail(p.line(m), "rule", "rule block must be a mapping")
		return
	}
	if !p.validateSchema(m) {
		return
	}

	p.decodeName(m, doc)
	doc.RuleDescription = p.requiredString(m, "description", "description")
	p.decodeFilters(m, doc)
	p.decodeActions(m, doc)
	p.decodeExamples(m, doc)
	p.decodeMetadata(m, doc)
}

// mappingGet returns the key and value nodes for key
func mappingGet(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

// requiredString reads a non-empty scalar. field is the dotted name used in errors.
func (p *parser) requiredString(m *yaml.Node, key, field string) string {
	_, v := mappingGet(m, key)
	if v == nil || isNull(v) {
		p.fail(p.line(m), field, "missing required field %s", field)
		return ""
	}
	if strings.TrimSpace(v.Value) == "" {
		p.fail(p.line(v), field, "%s must not be empty", field)
		return ""
	}
	p.lines[field] = p.line(v)
	return v.Value
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// requiredSeq returns the items of a required sequence
func (p *parser) requiredSeq(m *yaml.Node, key, field string) ([]*yaml.Node, bool) {
	_, v := mappingGet(m, key)
	if v == nil || isNull(v) {
		p.fail(p.line(m), field, "missing required field %s", field)
		return nil, false
	}
	p.lines[field] = p.line(v)
	return v.Content, true
}

func (p *parser) decodeName(m *yaml.Node, doc *types.Document) {
	name := p.requiredString(m, "name", "name")
	if name == "" {
		return
	}
	if !nameRe.MatchString(name) {
		p.fail(p.lines["name"], "name", "name %q must match %s", name, nameRe.String())
		return
	}
	doc.Name = name
}

func (p *parser) decodeFilters(m *yaml.Node, doc *types.Document) {
	items, ok := p.requiredSeq(m, "filters", "filters")
	if !ok {
		return
	}
	for i, item := range items {
		field := fmt.Sprintf("filters[%d]", i)
		ft := p.requiredString(item, "type", field+".type")
		pat := p.requiredString(item, "pattern", field+".pattern")
		doc.Filters = append(doc.Filters, types.Filter{Type: types.FilterType(ft), Pattern: pat})
	}
}

func (p *parser) decodeActions(m *yaml.Node, doc *types.Document) {
	items, ok := p.requiredSeq(m, "actions", "actions")
	if !ok {
		return
	}
	for i, item := range items {
		field := fmt.Sprintf("actions[%d]", i)
		kind := types.ActionKind(p.requiredString(item, "type", field+".type"))
		_, condNode := mappingGet(item, "conditions")
		_, msgNode := mappingGet(item, "message")

		switch kind {
		case types.ActionValidate, types.ActionReject:
			def := types.MatchRequired
			if kind == types.ActionReject {
				def = types.MatchForbidden
			}
			if msgNode != nil {
				p.fail(p.line(msgNode), field+".message", "%s actions carry their messages on conditions", kind)
			}
			if condNode == nil || len(condNode.Content) == 0 {
				p.fail(p.line(item), field+".conditions", "%s action must have at least one condition", kind)
				continue
			}
			action := types.Action{Kind: types.ActionValidate}
			for j, cn := range condNode.Content {
				action.Conditions = append(action.Conditions, p.decodeCondition(cn, fmt.Sprintf("%s.conditions[%d]", field, j), def))
			}
			doc.Actions = append(doc.Actions, action)

		case types.ActionSuggest:
			if condNode != nil {
				p.fail(p.line(condNode), field+".conditions", "suggest actions take no conditions")
			}
			msg := p.requiredString(item, "message", field+".message")
			doc.Actions = append(doc.Actions, types.Action{Kind: types.ActionSuggest, Message: msg})
		}
	}
}

func (p *parser) decodeCondition(n *yaml.Node, field string, def types.MatchCriterion) types.Condition {
	cond := types.Condition{
		Pattern: p.requiredString(n, "pattern", field+".pattern"),
		Message: p.requiredString(n, "message", field+".message"),
		Match:   def,
	}
	if _, v := mappingGet(n, "match"); v != nil {
		cond.Match = types.MatchCriterion(v.Value)
	}
	if _, v := mappingGet(n, "target"); v != nil {
		cond.Target = types.ConditionTarget(v.Value)
	}
	return cond
}

func (p *parser) decodeExamples(m *yaml.Node, doc *types.Document) {
	items, ok := p.requiredSeq(m, "examples", "examples")
	if !ok {
		return
	}
	if len(items) == 0 {
		p.fail(p.lines["examples"], "examples", "at least one example is required")
		return
	}
	for i, item := range items {
		field := fmt.Sprintf("examples[%d]", i)
		doc.Examples = append(doc.Examples, types.Example{
			Input:  p.requiredString(item, "input", field+".input"),
			Output: p.requiredString(item, "output", field+".output"),
		})
	}
}

func (p *parser) decodeMetadata(m *yaml.Node, doc *types.Document) {
	_, md := mappingGet(m, "metadata")
	if md == nil || isNull(md) {
		p.fail(p.line(m), "metadata", "missing required field metadata")
		return
	}

	priority := types.Priority(p.requiredString(md, "priority", "metadata.priority"))
	if priority != "" && !priority.Valid() {
		p.fail(p.lines["metadata.priority"], "metadata.priority",
			"metadata.priority must be one of high, medium, low, got %q", priority)
	}
	doc.Metadata.Priority = priority

	version := p.requiredString(md, "version", "metadata.version")
	if version != "" {
		if _, err := semver.NewVersion(version); err != nil {
			p.fail(p.lines["metadata.version"], "metadata.version",
				"metadata.version %q is not a semantic version: %v", version, err)
		}
	}
	doc.Metadata.Version = version

	if _, tags := mappingGet(md, "tags"); tags != nil {
		for _, t := range tags.Content {
			doc.Metadata.Tags = append(doc.Metadata.Tags, t.Value)
		}
	}
}
