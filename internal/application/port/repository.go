package port

import (
	"context"

	"wmrecon/internal/domain/model"
)

// ResultRepository persists reconciliation runs and their check outcomes.
type ResultRepository interface {
	// Run operations
	InsertRun(ctx context.Context, run *model.Run) error
	FinishRun(ctx context.Context, run *model.Run) error

	// Check operations
	InsertCheck(ctx context.Context, runID string, res *model.CheckResult) error

	// Connection management
	Close() error
}
