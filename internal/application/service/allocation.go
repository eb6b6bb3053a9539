package service

import (
	"context"
	"fmt"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"
	dsvc "wmrecon/internal/domain/service"
)

// AllocationService computes the wealth widget, allocations and top positions.
type AllocationService struct {
	calc *Calculator
}

func NewAllocationService(calc *Calculator) *AllocationService {
	return &AllocationService{calc: calc}
}

// Wealth returns total and investable wealth at day together with the income
// projected over the following year and its yield on total wealth.
func (s *AllocationService) Wealth(ctx context.Context, p model.Portfolio, day time.Time) (port.Wealth, error) {
	day = model.Day(day)
	holdings, err := s.calc.Holdings(ctx, p, day)
	if err != nil {
		return port.Wealth{}, err
	}
	w := port.Wealth{
		Total:      dsvc.TotalWealth(holdings, false),
		Investable: dsvc.TotalWealth(holdings, true),
	}

	inc, err := s.calc.Income(ctx, p, day.AddDate(0, 0, 1), day.AddDate(1, 0, 1), model.PortfolioOptions())
	if err != nil {
		return port.Wealth{}, fmt.Errorf("projected income of %s: %w", p.Name, err)
	}
	w.Income = inc.Total().Sum()
	w.IncomeYield = dsvc.Yield(w.Income, w.Total)
	return w, nil
}

// Allocation splits the holdings at day along one dimension.
func (s *AllocationService) Allocation(ctx context.Context, p model.Portfolio, day time.Time, dim dsvc.Dimension) ([]model.Share, error) {
	holdings, err := s.calc.Holdings(ctx, p, day)
	if err != nil {
		return nil, err
	}
	return dsvc.Allocate(holdings, dim), nil
}

// TopPositions ranks the holdings at day.
func (s *AllocationService) TopPositions(ctx context.Context, p model.Portfolio, day time.Time, q dsvc.TopQuery) ([]model.TopPosition, error) {
	holdings, err := s.calc.Holdings(ctx, p, day)
	if err != nil {
		return nil, err
	}
	return dsvc.TopPositions(holdings, q), nil
}
