package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ServiceDeps struct {
	Env        string
	Portfolios []model.Portfolio
	Checks     []string // nil runs every check
	Precision  int32
	Color      bool
	Harness    *Harness
	Sink       port.Sink
	Repo       port.ResultRepository
}

type Service struct {
	deps ServiceDeps
	fmt  *Formatter
	log  zerolog.Logger
}

func NewService(deps ServiceDeps) *Service {
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	return &Service{
		deps: deps,
		fmt:  NewFormatter(deps.Color),
		log:  log.With().Str("component", "reconcile").Logger(),
	}
}

// Run executes every selected check against every portfolio. A check that
// errors counts as failed and the run goes on; only cancellation stops it.
func (s *Service) Run(ctx context.Context) (*model.Run, error) {
	if len(s.deps.Portfolios) == 0 {
		return nil, errors.New("no portfolios")
	}
	names, err := ParseChecks(s.deps.Checks)
	if err != nil {
		return nil, err
	}

	run := &model.Run{
		ID:        uuid.NewString(),
		Env:       s.deps.Env,
		AsOf:      s.deps.Harness.AsOf,
		StartedAt: time.Now().UTC(),
	}
	if err := s.deps.Repo.InsertRun(ctx, run); err != nil {
		s.log.Warn().Err(err).Str("run", run.ID).Msg("persist run failed")
	}
	s.log.Info().
		Str("run", run.ID).
		Int("portfolios", len(s.deps.Portfolios)).
		Strs("checks", names).
		Msg("run started")

	total := len(s.deps.Portfolios) * len(names)
	for _, p := range s.deps.Portfolios {
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				_ = s.deps.Sink.NewLine()
				return run, err
			}
			_ = s.deps.Sink.WriteProgress(s.fmt.Progress(run.Checks+1, total, p.Name, name))

			res := s.runCheck(ctx, name, p)
			run.Checks++
			if !res.Passed() {
				run.Failed++
			}
			_ = s.deps.Sink.WriteReport(time.Now(), s.fmt.Result(res))
			if err := s.deps.Repo.InsertCheck(ctx, run.ID, res); err != nil {
				s.log.Warn().Err(err).Str("check", name).Msg("persist check failed")
			}
		}
	}

	run.FinishedAt = time.Now().UTC()
	if err := s.deps.Repo.FinishRun(ctx, run); err != nil {
		s.log.Warn().Err(err).Str("run", run.ID).Msg("persist run failed")
	}
	_ = s.deps.Sink.WriteReport(run.FinishedAt, s.fmt.Summary(run))
	s.log.Info().
		Str("run", run.ID).
		Int("checks", run.Checks).
		Int("failed", run.Failed).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("run finished")
	return run, nil
}

func (s *Service) runCheck(ctx context.Context, name string, p model.Portfolio) *model.CheckResult {
	began := time.Now()
	res := &model.CheckResult{Check: name, Portfolio: p.Name}
	e := NewExpect(PrecisionFor(name, s.deps.Precision))

	if err := s.safeCheck(ctx, checks[name], p, e); err != nil {
		res.Err = err.Error()
		s.log.Error().Err(err).Str("check", name).Str("portfolio", p.Name).Msg("check errored")
	}
	res.Steps = e.Steps()
	res.Failures = e.Failures()
	res.Duration = time.Since(began)
	return res
}

// safeCheck turns a panic inside a check into an error of that check.
func (s *Service) safeCheck(ctx context.Context, c Check, p model.Portfolio, e *Expect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c(ctx, s.deps.Harness, p, e)
}
