package svc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wmrecon/internal/domain/model"
	"wmrecon/internal/infrastructure/config"
)

func demoConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.AsOf = "2024-06-30"
	cfg.Source.Driver = config.DriverSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "wm.db")
	cfg.SQLite.SeedDemo = true
	cfg.API.PortfolioURL = "http://127.0.0.1:1/portfolio"
	cfg.API.TimeoutSeconds = 1
	cfg.Check.From = "2024-01-01"
	cfg.Check.To = "2024-06-30"
	cfg.Check.Precision = 2
	cfg.Check.TopLimit = 10
	return cfg
}

func TestNewResolvesEveryPortfolio(t *testing.T) {
	sc, err := New(context.Background(), demoConfig(t))
	require.NoError(t, err)
	defer sc.Close()

	require.Len(t, sc.Portfolios(), 1)
	assert.Equal(t, "Balanced", sc.Portfolios()[0].Name)

	deps := sc.BuildReconcileServiceDeps()
	assert.Equal(t, "test", deps.Env)
	assert.Equal(t, int32(2), deps.Precision)
	require.NotNil(t, deps.Harness)
	assert.Equal(t, "2024-06-30", model.FormatDay(deps.Harness.AsOf))
	assert.Equal(t, "2024-01-01", model.FormatDay(deps.Harness.From))
	assert.Equal(t, 10, deps.Harness.TopLimit)
	assert.NotNil(t, deps.Harness.API)
	assert.NotNil(t, deps.Harness.Calculator)
	assert.NotNil(t, deps.Repo)
}

func TestNewRejectsUnknownPortfolio(t *testing.T) {
	cfg := demoConfig(t)
	cfg.Check.Portfolios = []string{"Balanced", "Nope"}

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrPortfolioNotFound))
}

func TestNewWithoutPortfolios(t *testing.T) {
	cfg := demoConfig(t)
	cfg.SQLite.SeedDemo = false

	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNoPortfolios)
}
