package composite

import (
	"context"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
)

// Repo fans result writes out to every backend. Every backend is attempted;
// the first error is returned.
type Repo struct {
	repos []port.ResultRepository
}

func New(repos ...port.ResultRepository) *Repo {
	out := make([]port.ResultRepository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

// Len returns the number of backends.
func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) each(fn func(port.ResultRepository) error) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := fn(repo); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) InsertRun(ctx context.Context, run *model.Run) error {
	return r.each(func(repo port.ResultRepository) error { return repo.InsertRun(ctx, run) })
}

func (r *Repo) FinishRun(ctx context.Context, run *model.Run) error {
	return r.each(func(repo port.ResultRepository) error { return repo.FinishRun(ctx, run) })
}

func (r *Repo) InsertCheck(ctx context.Context, runID string, res *model.CheckResult) error {
	return r.each(func(repo port.ResultRepository) error { return repo.InsertCheck(ctx, runID, res) })
}

func (r *Repo) Close() error {
	return r.each(func(repo port.ResultRepository) error { return repo.Close() })
}

var _ port.ResultRepository = (*Repo)(nil)
