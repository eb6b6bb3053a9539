package reconcile

import (
	"context"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

type noopRepo struct{}

func NewNoopRepo() port.ResultRepository { return &noopRepo{} }

func (n *noopRepo) InsertRun(ctx context.Context, run *model.Run) error {
	return nil
}
func (n *noopRepo) FinishRun(ctx context.Context, run *model.Run) error {
	return nil
}
func (n *noopRepo) InsertCheck(ctx context.Context, runID string, res *model.CheckResult) error {
	return nil
}
func (n *noopRepo) Close() error { return nil }
