package types

// Severity of a finding
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Target is a file, or an event about a file, that rules are evaluated against
type Target struct {
	Path string `json:"path"`
	// Content is only meaningful when HasContent is set
	Content    string `json:"-"`
	HasContent bool   `json:"-"`
	// Event is the event name, empty for static scans
	Event string `json:"event,omitempty"`
}

// NewFileTarget returns a target for a file whose content was read
func NewFileTarget(path, content string) Target {
	return Target{Path: path, Content: content, HasContent: true}
}

// Finding is a single outcome of evaluating a rule against a target
type Finding struct {
	Target    string   `json:"target"`
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Action    int      `json:"action"`
	Condition int      `json:"condition"`
}

// MatchResult associates a rule with a target and what evaluating it produced
type MatchResult struct {
	Rule     string    `json:"rule"`
	Target   string    `json:"target"`
	Matched  bool      `json:"matched"`
	Findings []Finding `json:"findings,omitempty"`
}

// Errors counts the error findings
func (m MatchResult) Errors() int {
	n := 0
	for _, f := range m.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}
