package types

import (
	"math"
)

// NoCategory marks a document whose filename has no numeric prefix
const NoCategory = -1

// FilterType identifies what a filter pattern is matched against
type FilterType string

const (
	FilterFileExtension FilterType = "file_extension"
	FilterContent       FilterType = "content"
	FilterEvent         FilterType = "event"
	FilterDirectory     FilterType = "directory"
)

// FilterTypes lists every supported filter type
func FilterTypes() []FilterType {
	return []FilterType{FilterFileExtension, FilterContent, FilterEvent, FilterDirectory}
}

// Valid reports whether t is a supported filter type
func (t FilterType) Valid() bool {
	for _, known := range FilterTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsGlob reports whether patterns of this type are globs rather than regexes
func (t FilterType) IsGlob() bool {
	return t == FilterDirectory
}

// ActionKind is the behaviour of an action
type ActionKind string

const (
	ActionValidate ActionKind = "validate"
	ActionSuggest  ActionKind = "suggest"
	// ActionReject is accepted on input and normalized to ActionValidate
	// with forbidden conditions.
	ActionReject ActionKind = "reject"
)

// MatchCriterion says whether a condition pattern must be present or absent
type MatchCriterion string

const (
	MatchRequired  MatchCriterion = "required"
	MatchForbidden MatchCriterion = "forbidden"
)

// ConditionTarget is the text a condition pattern is tested against
type ConditionTarget string

const (
	// TargetInferred picks path or content from the pattern shape
	TargetInferred ConditionTarget = ""
	TargetPath     ConditionTarget = "path"
	TargetContent  ConditionTarget = "content"
)

// Priority orders documents sharing a category
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of high, medium, low
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank returns 0 for high, 1 for medium, 2 for low
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Document is a parsed rule document. Its identity is Path.
type Document struct {
	Path     string `json:"path"`
	Category int    `json:"category"`

	// Front matter
	Description string `json:"description"`
	Globs       string `json:"globs"`
	AlwaysApply bool   `json:"alwaysApply"`

	// Rule block
	Name            string    `json:"name"`
	RuleDescription string    `json:"ruleDescription"`
	Filters         []Filter  `json:"filters"`
	Actions         []Action  `json:"actions"`
	Examples        []Example `json:"examples"`
	Metadata        Metadata  `json:"metadata"`

	// Body is the markdown between the front matter and the rule block,
	// Footer the markdown after it
	Body   string `json:"-"`
	Footer string `json:"-"`
}

// CategoryRank returns the category for ordering, documents without one sort last
func (d *Document) CategoryRank() int {
	if d.Category == NoCategory {
		return math.MaxInt
	}
	return d.Category
}

// Filter is a single applicability predicate
type Filter struct {
	Type    FilterType `json:"type"`
	Pattern string     `json:"pattern"`
}

// Action is executed, in declaration order, when a document matches a target
type Action struct {
	Kind       ActionKind  `json:"kind"`
	Conditions []Condition `json:"conditions,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// Condition is a validate check
type Condition struct {
	Pattern string          `json:"pattern"`
	Message string          `json:"message"`
	Match   MatchCriterion  `json:"match"`
	Target  ConditionTarget `json:"target,omitempty"`
}

// Example documents the rule; it is never evaluated
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Metadata is the rule block metadata
type Metadata struct {
	Priority Priority `json:"priority"`
	Version  string   `json:"version"`
	Tags     []string `json:"tags,omitempty"`
}
