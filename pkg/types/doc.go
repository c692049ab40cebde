// Package types defines the core types shared throughout rulelint.
// This includes the rule document model (Document, Filter, Action,
// Condition, Example, Metadata) and the evaluation model (Target,
// Finding, MatchResult).
//
// Documents are created by the rules package at load time and are never
// mutated afterwards; every other package treats them as read-only values.
package types
