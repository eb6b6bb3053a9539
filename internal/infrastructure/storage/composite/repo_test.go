package composite

import (
	"context"
	"errors"
	"testing"

	"wmrecon/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

type countingRepo struct {
	runs, checks, closed int
	err                  error
}

func (c *countingRepo) InsertRun(context.Context, *model.Run) error {
	c.runs++
	return c.err
}

func (c *countingRepo) FinishRun(context.Context, *model.Run) error { return c.err }

func (c *countingRepo) InsertCheck(context.Context, string, *model.CheckResult) error {
	c.checks++
	return c.err
}

func (c *countingRepo) Close() error {
	c.closed++
	return c.err
}

func TestFanOutReturnsFirstError(t *testing.T) {
	errA := errors.New("a down")
	a := &countingRepo{err: errA}
	b := &countingRepo{err: errors.New("b down")}
	c := &countingRepo{}
	repo := New(a, nil, b, c)
	assert.Equal(t, 3, repo.Len())

	ctx := context.Background()
	assert.ErrorIs(t, repo.InsertRun(ctx, &model.Run{ID: "r"}), errA)
	assert.ErrorIs(t, repo.InsertCheck(ctx, "r", &model.CheckResult{}), errA)
	assert.ErrorIs(t, repo.Close(), errA)

	for _, r := range []*countingRepo{a, b, c} {
		assert.Equal(t, 1, r.runs)
		assert.Equal(t, 1, r.checks)
		assert.Equal(t, 1, r.closed)
	}
}

func TestEmpty(t *testing.T) {
	repo := New()
	assert.NoError(t, repo.FinishRun(context.Background(), &model.Run{}))
	assert.NoError(t, repo.Close())
}
