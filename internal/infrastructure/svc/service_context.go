package svc

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"wmrecon/internal/application/container"
	"wmrecon/internal/application/port"
	"wmrecon/internal/application/usecase/reconcile"
	"wmrecon/internal/domain/model"
	"wmrecon/internal/infrastructure/config"
	infra "wmrecon/internal/infrastructure/container"
	"wmrecon/internal/infrastructure/wmapi"
	"wmrecon/internal/interfaces/console"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	infra *infra.Container
	app   *container.Container
	api   port.WealthAPI

	Sink port.Sink

	portfolios []model.Portfolio
}

// New builds every dependency of a reconciliation run. On error, whatever was
// already opened is closed.
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	backends, err := infra.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage initialization failed: %w", err)
	}

	sc := &ServiceContext{
		Ctx:    ctx,
		Config: cfg,
		infra:  backends,
		app:    container.New(backends.MarketData(), backends.Results(), cfg.App.Workers),
		api: wmapi.New(wmapi.Config{
			PortfolioURL:       cfg.API.PortfolioURL,
			CommonURL:          cfg.API.CommonURL,
			CreditURL:          cfg.API.CreditURL,
			ReportURL:          cfg.API.ReportURL,
			Username:           cfg.API.Username,
			Password:           cfg.API.Password,
			Timeout:            cfg.Timeout(),
			InsecureSkipVerify: cfg.API.InsecureSkipVerify,
		}),
		Sink: console.NewSink(),
	}

	if err := sc.initializeComponents(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

func (sc *ServiceContext) initializeComponents() error {
	ps, err := sc.resolvePortfolios()
	if err != nil {
		return err
	}
	sc.portfolios = ps

	log.Info().
		Int("portfolios", len(ps)).
		Str("source", sc.Config.Source.Driver).
		Msg("components initialized")
	return nil
}

// resolvePortfolios returns the configured portfolios, or every portfolio of
// the source when none is named.
func (sc *ServiceContext) resolvePortfolios() ([]model.Portfolio, error) {
	data := sc.app.MarketData()
	if len(sc.Config.Check.Portfolios) == 0 {
		ps, err := data.Portfolios(sc.Ctx)
		if err != nil {
			return nil, fmt.Errorf("list portfolios: %w", err)
		}
		if len(ps) == 0 {
			return nil, ErrNoPortfolios
		}
		return ps, nil
	}

	out := make([]model.Portfolio, 0, len(sc.Config.Check.Portfolios))
	for _, name := range sc.Config.Check.Portfolios {
		p, err := data.Portfolio(sc.Ctx, name)
		if errors.Is(err, model.ErrPortfolioNotFound) {
			return nil, fmt.Errorf("portfolio %q: %w", name, err)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (sc *ServiceContext) Portfolios() []model.Portfolio {
	return sc.portfolios
}

// BuildReconcileServiceDeps assembles the reconcile use case over the
// configured window.
func (sc *ServiceContext) BuildReconcileServiceDeps() reconcile.ServiceDeps {
	from, to := sc.Config.Window()
	return reconcile.ServiceDeps{
		Env:        sc.Config.App.Env,
		Portfolios: sc.portfolios,
		Checks:     sc.Config.Check.Checks,
		Precision:  int32(sc.Config.Check.Precision),
		Color:      os.Getenv("NO_COLOR") == "",
		Harness: &reconcile.Harness{
			API:         sc.api,
			Calculator:  sc.app.Calculator(),
			Performance: sc.app.PerformanceService(),
			Allocation:  sc.app.AllocationService(),
			Totals:      sc.app.TotalsService(),
			AsOf:        sc.Config.AsOf(),
			From:        from,
			To:          to,
			TopLimit:    sc.Config.Check.TopLimit,
			Benchmark:   sc.Config.Check.Benchmark,
		},
		Sink: sc.Sink,
		Repo: sc.app.Results(),
	}
}

// Close releases the storage backends. The result stores belong to the
// infrastructure container and are closed with it.
func (sc *ServiceContext) Close() error {
	return sc.infra.Close()
}
