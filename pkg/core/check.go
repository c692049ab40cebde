package core

import (
	"context"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/rules"
)

// CheckResult is the outcome of validating a rule directory
type CheckResult struct {
	Registry *rules.Registry
	Errors   *errors.List
	Warnings []rules.Warning
}

// OK reports whether every document loaded without error
func (c *CheckResult) OK() bool {
	return c.Errors.Len() == 0
}

// Check loads and validates the rule directory without evaluating targets.
// Only a missing directory or cancellation is returned as an error.
func Check(ctx context.Context, dir string, opts rules.LoadOptions) (*CheckResult, error) {
	logger := logging.GetLogger("core.check")

	reg, errs, err := load(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("rules", reg.Len()).Int("errors", errs.Len()).Msg("Check complete")
	return &CheckResult{Registry: reg, Errors: errs, Warnings: reg.Warnings()}, nil
}
