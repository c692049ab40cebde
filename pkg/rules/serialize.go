package rules

import (
	"bytes"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/rulelint/pkg/types"
)

type yamlRuleBlock struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Filters     []yamlFilter  `yaml:"filters"`
	Actions     []yamlAction  `yaml:"actions"`
	Examples    []yamlExample `yaml:"examples"`
	Metadata    yamlMetadata  `yaml:"metadata"`
}

type yamlFilter struct {
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
}

type yamlAction struct {
	Type       string          `yaml:"type"`
	Conditions []yamlCondition `yaml:"conditions,omitempty"`
	Message    string          `yaml:"message,omitempty"`
}

type yamlCondition struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
	Match   string `yaml:"match,omitempty"`
	Target  string `yaml:"target,omitempty"`
}

type yamlExample struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

type yamlMetadata struct {
	Priority string   `yaml:"priority"`
	Version  string   `yaml:"version"`
	Tags     []string `yaml:"tags,omitempty"`
}

// Marshal writes doc in canonical form: front matter, markdown body, rule
// block, footer. Parsing the result yields a document equal to doc.
func Marshal(doc *types.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontMatterMarker + "\n")
	writeFrontMatterValue(&buf, keyDescription, doc.Description)
	writeFrontMatterValue(&buf, keyGlobs, doc.Globs)
	writeFrontMatterValue(&buf, keyAlwaysApply, strconv.FormatBool(doc.AlwaysApply))
	buf.WriteString(frontMatterMarker + "\n")
	buf.WriteString(doc.Body)

	var root yaml.Node
	if err := root.Encode(toYAML(doc)); err != nil {
		return nil, err
	}
	quoteTagLines(&root)

	buf.WriteString(ruleOpenTag + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString(ruleCloseTag + "\n")
	buf.WriteString(doc.Footer)
	return buf.Bytes(), nil
}

// quoteTagLines double quotes scalars with a line that reads as a rule tag,
// so that no line of the encoded block can open or close a rule block
func quoteTagLines(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		for _, line := range strings.Split(n.Value, "\n") {
			if t := strings.TrimSpace(line); t == ruleOpenTag || t == ruleCloseTag {
				n.Style = yaml.DoubleQuotedStyle
				return
			}
		}
		return
	}
	for _, c := range n.Content {
		quoteTagLines(c)
	}
}

func writeFrontMatterValue(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key + ":")
	if value != "" {
		buf.WriteString(" " + quoteIfNeeded(value))
	}
	buf.WriteByte('\n')
}

// quoteIfNeeded quotes values that would not survive the line-wise front
// matter parser unchanged
func quoteIfNeeded(s string) string {
	if s != strings.TrimSpace(s) || strings.ContainsAny(s, "\n\r") || unquote(s) != s {
		return strconv.Quote(s)
	}
	return s
}

func toYAML(doc *types.Document) yamlRuleBlock {
	block := yamlRuleBlock{
		Name:        doc.Name,
		Description: doc.RuleDescription,
		Metadata: yamlMetadata{
			Priority: string(doc.Metadata.Priority),
			Version:  doc.Metadata.Version,
			Tags:     doc.Metadata.Tags,
		},
	}
	for _, f := range doc.Filters {
		block.Filters = append(block.Filters, yamlFilter{Type: string(f.Type), Pattern: f.Pattern})
	}
	for _, a := range doc.Actions {
		ya := yamlAction{Type: string(a.Kind), Message: a.Message}
		for _, c := range a.Conditions {
			yc := yamlCondition{Pattern: c.Pattern, Message: c.Message, Target: string(c.Target)}
			if c.Match != types.MatchRequired {
				yc.Match = string(c.Match)
			}
			ya.Conditions = append(ya.Conditions, yc)
		}
		block.Actions = append(block.Actions, ya)
	}
	for _, e := range doc.Examples {
		block.Examples = append(block.Examples, yamlExample{Input: e.Input, Output: e.Output})
	}
	return block
}
