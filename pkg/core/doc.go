// Package core implements the rulelint pipeline: load the rule directory
// once, collect the targets, evaluate every rule against every target and
// aggregate the findings into a report.
//
// # Evaluation
//
// The registry is immutable once loaded and is shared read-only by the
// workers. Targets are evaluated concurrently by a bounded pool; within a
// target, rules run in dispatch order (category, then priority, then name)
// and each rule's actions run in declaration order. Results are stored per
// target index, so the report does not depend on scheduling.
//
// # Failures
//
// Load errors for individual documents do not stop a run: the documents
// that loaded cleanly are evaluated and the errors are returned alongside
// the report. Duplicate rule names do stop it, since no rule sharing the
// name can be trusted. A target that cannot be read becomes a match error
// in the report and the other targets are still evaluated.
//
// Cancellation is checked before each target.
package core
