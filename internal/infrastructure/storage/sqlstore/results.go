package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

func (s *Store) InsertRun(ctx context.Context, run *model.Run) error {
	_, err := s.db.ExecContext(ctx, s.Rebind(`
INSERT INTO recon_runs(id, env, as_of, started_at, checks, failed)
VALUES(?, ?, ?, ?, 0, 0)`),
		run.ID, run.Env, model.FormatDay(run.AsOf), run.StartedAt.UTC().Format(timeLayouts[0]))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, run *model.Run) error {
	_, err := s.db.ExecContext(ctx, s.Rebind(`
UPDATE recon_runs SET finished_at = ?, checks = ?, failed = ? WHERE id = ?`),
		run.FinishedAt.UTC().Format(timeLayouts[0]), run.Checks, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) InsertCheck(ctx context.Context, runID string, res *model.CheckResult) error {
	failures, err := json.Marshal(res.Failures)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.Rebind(`
INSERT INTO recon_checks(run_id, check_name, portfolio, steps, failed_steps, error, failures, duration_ms)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`),
		runID, res.Check, res.Portfolio, res.Steps, len(res.Failures), res.Err, string(failures), res.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert check %s/%s: %w", res.Portfolio, res.Check, err)
	}
	return nil
}

// Close is a no-op: the *sql.DB belongs to the backend that opened it.
func (s *Store) Close() error { return nil }

var _ port.ResultRepository = (*Store)(nil)
