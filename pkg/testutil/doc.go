// Package testutil provides helpers for rulelint tests.
//
// Key components:
//   - File helpers: CreateFile, CreateDir, ReadFile and friends, all failing
//     the test on error
//   - RuleDocBuilder: declarative construction of rule document text
//   - RulesDir: a temporary rules directory populated from builders
//
// All test data should be defined inline, not in external files, and each
// test works in its own t.TempDir().
package testutil
