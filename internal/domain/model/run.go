package model

import (
	"fmt"
	"time"
)

// ========== Reconciliation ==========

// Run is one reconciliation pass over a set of portfolios.
type Run struct {
	ID         string    `json:"id"`
	Env        string    `json:"env"`
	AsOf       time.Time `json:"as_of"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checks     int       `json:"checks"`
	Failed     int       `json:"failed"`
}

// Passed reports whether every check of the run passed.
func (r *Run) Passed() bool { return r.Failed == 0 }

// CheckResult is the outcome of one check against one portfolio.
// Failures are soft: a check keeps comparing after a mismatch.
type CheckResult struct {
	Check     string        `json:"check"`
	Portfolio string        `json:"portfolio"`
	Steps     int           `json:"steps"`
	Failures  []string      `json:"failures"`
	Err       string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Passed reports whether the check ran and matched on every step.
func (c *CheckResult) Passed() bool { return c.Err == "" && len(c.Failures) == 0 }

// Summary renders the failure count line.
func (c *CheckResult) Summary() string {
	if c.Err != "" {
		return fmt.Sprintf("error: %s", c.Err)
	}
	return fmt.Sprintf("Failed Test Steps:%d of %d", len(c.Failures), c.Steps)
}
