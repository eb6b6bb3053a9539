package container

import (
	"wmrecon/internal/application/port"
	"wmrecon/internal/application/service"
)

type Container struct {
	data    port.MarketData
	results port.ResultRepository
	workers int

	calculator         *service.Calculator
	totalsService      *service.TotalsService
	performanceService *service.PerformanceService
	allocationService  *service.AllocationService
}

func New(data port.MarketData, results port.ResultRepository, workers int) *Container {
	return &Container{
		data:    data,
		results: results,
		workers: workers,
	}
}

func (c *Container) MarketData() port.MarketData {
	return c.data
}

func (c *Container) Results() port.ResultRepository {
	return c.results
}

func (c *Container) Calculator() *service.Calculator {
	if c.calculator == nil {
		c.calculator = service.NewCalculator(c.data)
	}
	return c.calculator
}

func (c *Container) TotalsService() *service.TotalsService {
	if c.totalsService == nil {
		c.totalsService = service.NewTotalsService(c.Calculator(), c.workers)
	}
	return c.totalsService
}

func (c *Container) PerformanceService() *service.PerformanceService {
	if c.performanceService == nil {
		c.performanceService = service.NewPerformanceService(c.data, c.TotalsService())
	}
	return c.performanceService
}

func (c *Container) AllocationService() *service.AllocationService {
	if c.allocationService == nil {
		c.allocationService = service.NewAllocationService(c.Calculator())
	}
	return c.allocationService
}

func (c *Container) Close() error {
	if c.results == nil {
		return nil
	}
	return c.results.Close()
}
