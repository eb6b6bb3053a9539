package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/application/service"
	"wmrecon/internal/domain/model"
)

// bookData is a USD portfolio holding 20 Acme shares closing at 50.
type bookData struct {
	portfolio model.Portfolio
	trades    []model.Trade
	coupons   []model.CouponEvent
}

var acme = model.Instrument{ID: 1, Code: "ACME", Name: "Acme Corp", AssetClass: model.Equities, Currency: "USD", Multiplier: 1, Issuer: "Acme"}

func newBookData() *bookData {
	return &bookData{
		portfolio: model.Portfolio{ID: 3, Name: "Income", Currency: "USD", Inception: model.Date(2024, 1, 2)},
		trades: []model.Trade{
			{ID: 5, PortfolioID: 3, Instrument: acme, Time: model.Date(2024, 1, 2), Quantity: 20, Price: 40, FXRate: 1, Custodian: "Vault", Investable: true},
		},
	}
}

func (b *bookData) Portfolios(context.Context) ([]model.Portfolio, error) {
	return []model.Portfolio{b.portfolio}, nil
}
func (b *bookData) Portfolio(context.Context, string) (model.Portfolio, error) {
	return b.portfolio, nil
}
func (b *bookData) Trades(context.Context, int64) ([]model.Trade, error) { return b.trades, nil }
func (b *bookData) ClosePrices(context.Context, int64, time.Time) (map[string]float64, error) {
	return map[string]float64{"ACME": 50}, nil
}
func (b *bookData) FXRate(_ context.Context, from, to string, _ time.Time) (float64, error) {
	if strings.EqualFold(from, to) {
		return 1, nil
	}
	return 0, model.ErrFXRateNotFound
}
func (b *bookData) Dividends(context.Context, int64) ([]model.DividendEvent, error) { return nil, nil }
func (b *bookData) Coupons(context.Context, int64) ([]model.CouponEvent, error)     { return b.coupons, nil }
func (b *bookData) NonMarketSchedules(context.Context, int64) ([]model.NonMarketSchedule, error) {
	return nil, nil
}
func (b *bookData) BenchmarkPrices(context.Context, string, time.Time, time.Time) (model.Series, error) {
	return nil, nil
}

// fakeAPI answers with canned values.
type fakeAPI struct {
	wealth      port.Wealth
	wealthErr   error
	top         []model.TopPosition
	performance []model.PerformancePoint
	principal   map[string]float64
	snapshot    []model.Position
	trades      []port.TradeRow
	history     map[string]model.Series
}

var _ port.WealthAPI = (*fakeAPI)(nil)

func (f *fakeAPI) Wealth(context.Context, int64) (port.Wealth, error) { return f.wealth, f.wealthErr }
func (f *fakeAPI) Performance(context.Context, port.PerformanceQuery) ([]model.PerformancePoint, error) {
	if f.performance == nil {
		return nil, errors.New("not served")
	}
	return f.performance, nil
}
func (f *fakeAPI) Profit(context.Context, int64, time.Time, time.Time) (map[string]float64, error) {
	return nil, errors.New("not served")
}
func (f *fakeAPI) Income(context.Context, int64, time.Time, time.Time) (map[string]model.Series, error) {
	return nil, errors.New("not served")
}
func (f *fakeAPI) Allocation(context.Context, int64, string) (map[string]float64, error) {
	return nil, errors.New("not served")
}
func (f *fakeAPI) TopPositions(context.Context, port.TopQuery) ([]model.TopPosition, error) {
	return f.top, nil
}
func (f *fakeAPI) Principal(context.Context, int64) (map[string]float64, error) {
	if f.principal == nil {
		return nil, errors.New("not served")
	}
	return f.principal, nil
}
func (f *fakeAPI) Snapshot(context.Context, int64) ([]model.Position, error) {
	return f.snapshot, nil
}
func (f *fakeAPI) Trades(context.Context, int64) ([]port.TradeRow, error) {
	return f.trades, nil
}
func (f *fakeAPI) History(context.Context, int64, time.Time, time.Time) (map[string]model.Series, error) {
	return f.history, nil
}

type memRepo struct {
	mu       sync.Mutex
	runs     map[string]*model.Run
	checks   map[string][]*model.CheckResult
	finished int
}

func newMemRepo() *memRepo {
	return &memRepo{runs: make(map[string]*model.Run), checks: make(map[string][]*model.CheckResult)}
}

func (m *memRepo) InsertRun(_ context.Context, run *model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}
func (m *memRepo) FinishRun(context.Context, *model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
	return nil
}
func (m *memRepo) InsertCheck(_ context.Context, runID string, res *model.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[runID] = append(m.checks[runID], res)
	return nil
}
func (m *memRepo) Close() error { return nil }

type bufSink struct {
	progress []string
	reports  []string
}

func (s *bufSink) WriteProgress(line string) error {
	s.progress = append(s.progress, line)
	return nil
}
func (s *bufSink) WriteReport(_ time.Time, line string) error {
	s.reports = append(s.reports, line)
	return nil
}
func (s *bufSink) NewLine() error { return nil }

func newHarness(data port.MarketData, api port.WealthAPI) *Harness {
	calc := service.NewCalculator(data)
	totals := service.NewTotalsService(calc, 2)
	return &Harness{
		API:         api,
		Calculator:  calc,
		Performance: service.NewPerformanceService(data, totals),
		Allocation:  service.NewAllocationService(calc),
		Totals:      totals,
		AsOf:        model.Date(2024, 3, 31),
		From:        model.Date(2024, 1, 1),
		To:          model.Date(2024, 3, 31),
		TopLimit:    10,
	}
}
