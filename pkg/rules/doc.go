// Package rules loads rule documents into an immutable registry.
//
// # Document Format
//
// A rule document is a markdown file with a front matter block and exactly
// one rule block:
//
//	---
//	description: Rule files must start with front matter
//	globs: .cursor/rules/*.mdc
//	alwaysApply: false
//	---
//	# Front matter
//
//	<rule>
//	name: front_matter_required
//	description: Every rule file starts with a front matter block
//	filters:
//	  - type: file_extension
//	    pattern: "\\.mdc$"
//	actions:
//	  - type: validate
//	    conditions:
//	      - pattern: "^---"
//	        message: must start with front matter
//	examples:
//	  - input: "# no front matter"
//	    output: rejected
//	metadata:
//	  priority: high
//	  version: 1.0
//	</rule>
//
// The front matter is read line by line (`key: value`) because editor globs
// such as `**/*.ts` are not valid unquoted YAML. It must contain exactly the
// description, globs and alwaysApply keys. The rule block is YAML, checked
// against an embedded JSON schema and then decoded with line tracking so
// that every error points at a file line.
//
// # Loading
//
// Load walks a directory, parses every document and compiles its patterns.
// A document with any error is rejected as a whole while the remaining
// documents still load; all errors are returned together as an errors.List.
// Documents sharing a rule name are all rejected.
//
// Filenames may carry a numeric prefix (`010-core.mdc`). It becomes the
// document category, which orders dispatch.
package rules
