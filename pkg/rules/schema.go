package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const ruleSchemaURL = "https://rulelint.schemas.local/rule.schema.json"

//go:embed schema/rule.schema.json
var ruleSchemaJSON string

var (
	schemaOnce sync.Once
	ruleSchema *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(ruleSchemaURL, strings.NewReader(ruleSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("rule schema load failed: %w", err)
			return
		}
		ruleSchema, schemaErr = c.Compile(ruleSchemaURL)
	})
	return ruleSchema, schemaErr
}

// validateSchema checks the rule block mapping against the embedded schema.
// It reports every violation and returns false if there was any.
func (p *parser) validateSchema(m *yaml.Node) bool {
	schema, err := compiledSchema()
	if err != nil {
		p.fail(p.line(m), "rule", "%v", err)
		return false
	}

	var raw interface{}
	if err := m.Decode(&raw); err != nil {
		p.fail(p.line(m), "rule", "cannot decode rule block: %v", err)
		return false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		p.fail(p.line(m), "rule", "rule block keys must be strings: %v", err)
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance interface{}
	if err := dec.Decode(&instance); err != nil {
		p.fail(p.line(m), "rule", "cannot decode rule block: %v", err)
		return false
	}

	err = schema.Validate(instance)
	if err == nil {
		return true
	}

	var verr *jsonschema.ValidationError
	if !stderrors.As(err, &verr) {
		p.fail(p.line(m), "rule", "%v", err)
		return false
	}
	for _, leaf := range schemaLeaves(verr) {
		p.fail(p.line(nodeAt(m, leaf.InstanceLocation)), fieldFromPointer(leaf.InstanceLocation),
			"%s: %s", fieldFromPointer(leaf.InstanceLocation), leaf.Message)
	}
	return false
}

func schemaLeaves(e *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return []*jsonschema.ValidationError{e}
	}
	var out []*jsonschema.ValidationError
	for _, c := range e.Causes {
		out = append(out, schemaLeaves(c)...)
	}
	return out
}

// nodeAt resolves a JSON pointer against a YAML node tree, returning the
// deepest node found.
func nodeAt(n *yaml.Node, pointer string) *yaml.Node {
	cur := n
	for _, tok := range pointerTokens(pointer) {
		switch cur.Kind {
		case yaml.MappingNode:
			_, v := mappingGet(cur, tok)
			if v == nil {
				return cur
			}
			cur = v
		case yaml.SequenceNode:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(cur.Content) {
				return cur
			}
			cur = cur.Content[i]
		default:
			return cur
		}
	}
	return cur
}

func pointerTokens(pointer string) []string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}
	toks := strings.Split(pointer, "/")
	for i, t := range toks {
		t = strings.ReplaceAll(t, "~1", "/")
		toks[i] = strings.ReplaceAll(t, "~0", "~")
	}
	return toks
}

// fieldFromPointer turns /actions/0/conditions/1 into actions[0].conditions[1]
func fieldFromPointer(pointer string) string {
	toks := pointerTokens(pointer)
	if len(toks) == 0 {
		return "rule"
	}
	var sb strings.Builder
	for _, t := range toks {
		if _, err := strconv.Atoi(t); err == nil {
			sb.WriteString("[" + t + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(t)
	}
	return sb.String()
}
