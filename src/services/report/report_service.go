// Package report computes revenue summaries over stored orders.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/order/domain"
)

// ErrInvalidPeriod is returned for a month outside 1..12 or a negative year.
var ErrInvalidPeriod = errors.New("invalid report period")

// StatusSummary aggregates the orders sharing one status.
type StatusSummary struct {
	Orders  int
	Revenue float64
}

// MonthlyReport is derived on every request and never persisted.
type MonthlyReport struct {
	Year         int
	Month        int
	Summary      map[string]StatusSummary
	TotalOrders  int
	TotalRevenue float64
}

// Aggregator is the slice of the order store the engine needs.
type Aggregator interface {
	SummarizeByStatus(ctx context.Context, start, end time.Time) ([]domain.StatusTotal, error)
}

type ReportService interface {
	// MonthlyReport summarises orders created in the given calendar month.
	// Zero year or month fall back to the current UTC year or month.
	MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error)
}

type reportService struct {
	logger log.Logger
	orders Aggregator
	now    func() time.Time
}

func NewReportService(logger log.Logger, orders Aggregator, now func() time.Time) ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{
		logger: logger,
		orders: orders,
		now:    now,
	}
}

// MonthWindow returns the half-open window [start, end) covering the month.
func MonthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	if month == 12 {
		return start, time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return start, time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
}

func (s *reportService) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	today := s.now().UTC()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	if year < 0 || month < 1 || month > 12 {
		return nil, errors.Wrapf(ErrInvalidPeriod, "year %d month %d", year, month)
	}

	start, end := MonthWindow(year, month)
	totals, err := s.orders.SummarizeByStatus(ctx, start, end)
	if err != nil {
		s.logger.Exception(ctx, "Failed to aggregate orders for monthly report", err)
		return nil, errors.Wrap(err, "summarize orders")
	}

	report := &MonthlyReport{
		Year:    year,
		Month:   month,
		Summary: make(map[string]StatusSummary, len(totals)),
	}

	// total_revenue is rounded from the raw group sums, not from the rounded ones.
	revenue := decimal.Zero
	for _, total := range totals {
		groupRevenue := decimal.NewFromFloat(total.Revenue)
		report.Summary[string(total.Status)] = StatusSummary{
			Orders:  total.Count,
			Revenue: groupRevenue.Round(2).InexactFloat64(),
		}
		report.TotalOrders += total.Count
		revenue = revenue.Add(groupRevenue)
	}
	report.TotalRevenue = revenue.Round(2).InexactFloat64()

	s.logger.InfoWithExtra(ctx, "Monthly report computed", map[string]any{
		"Year":        year,
		"Month":       month,
		"TotalOrders": report.TotalOrders,
	})
	return report, nil
}
