package report_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/services/order/domain"
	"go-clothing-store/src/services/order/domain/persistence/mocks"
	"go-clothing-store/src/services/report"
)

func newTestReportService(store *mocks.MockOrderStore, now time.Time) report.ReportService {
	return report.NewReportService(
		log.NewLoggerWithOutput(io.Discard, log.InfoLevel),
		store,
		func() time.Time { return now },
	)
}

func seed(store *mocks.MockOrderStore, status domain.Status, subtotal float64, createdAt time.Time) {
	store.Seed(domain.Order{Status: status, Subtotal: subtotal, CreatedAt: createdAt})
}

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "leap february",
			year:      2024,
			month:     2,
			wantStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls into next year",
			year:      2023,
			month:     12,
			wantStart: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := report.MonthWindow(tt.year, tt.month)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestMonthlyReport_WindowBoundaries(t *testing.T) {
	store := mocks.NewMockOrderStore()
	lastInstantOfFebruary := time.Date(2024, time.February, 29, 23, 59, 59, 999_000_000, time.UTC)
	firstInstantOfMarch := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	seed(store, domain.StatusPaid, 10, lastInstantOfFebruary)
	seed(store, domain.StatusPaid, 20, firstInstantOfMarch)

	svc := newTestReportService(store, time.Now())

	february, err := svc.MonthlyReport(context.Background(), 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, february.TotalOrders)
	assert.Equal(t, 10.0, february.TotalRevenue)

	march, err := svc.MonthlyReport(context.Background(), 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, march.TotalOrders)
	assert.Equal(t, 20.0, march.TotalRevenue)
}

func TestMonthlyReport_GroupsByStatus(t *testing.T) {
	store := mocks.NewMockOrderStore()
	day := time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)
	seed(store, domain.StatusPaid, 10.10, day)
	seed(store, domain.StatusPaid, 20.20, day.Add(time.Hour))
	seed(store, domain.StatusPending, 44.99, day)
	seed(store, domain.StatusCancelled, 5, day)

	svc := newTestReportService(store, time.Now())

	got, err := svc.MonthlyReport(context.Background(), 2024, 5)
	require.NoError(t, err)

	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 5, got.Month)
	assert.Equal(t, map[string]report.StatusSummary{
		"paid":      {Orders: 2, Revenue: 30.3},
		"pending":   {Orders: 1, Revenue: 44.99},
		"cancelled": {Orders: 1, Revenue: 5},
	}, got.Summary)
	assert.Equal(t, 4, got.TotalOrders)
	// The paid group sums to 30.299999999999997 before rounding.
	assert.Equal(t, 80.29, got.TotalRevenue)
}

func TestMonthlyReport_EmptyWindow(t *testing.T) {
	store := mocks.NewMockOrderStore()
	seed(store, domain.StatusPaid, 10, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC))

	svc := newTestReportService(store, time.Now())

	got, err := svc.MonthlyReport(context.Background(), 2024, 7)
	require.NoError(t, err)
	assert.Empty(t, got.Summary)
	assert.NotNil(t, got.Summary)
	assert.Equal(t, 0, got.TotalOrders)
	assert.Equal(t, 0.0, got.TotalRevenue)
}

func TestMonthlyReport_DefaultsToCurrentMonth(t *testing.T) {
	store := mocks.NewMockOrderStore()
	now := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	seed(store, domain.StatusPending, 12.5, now.Add(-time.Hour))
	seed(store, domain.StatusPending, 99, now.Add(2*time.Hour))

	svc := newTestReportService(store, now)

	got, err := svc.MonthlyReport(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, 12, got.Month)
	assert.Equal(t, 1, got.TotalOrders)
	assert.Equal(t, 12.5, got.TotalRevenue)

	onlyYear, err := svc.MonthlyReport(context.Background(), 2026, 0)
	require.NoError(t, err)
	assert.Equal(t, 2026, onlyYear.Year)
	assert.Equal(t, 12, onlyYear.Month)
}

func TestMonthlyReport_InvalidMonth(t *testing.T) {
	svc := newTestReportService(mocks.NewMockOrderStore(), time.Now())

	for _, month := range []int{-1, 13} {
		_, err := svc.MonthlyReport(context.Background(), 2024, month)
		assert.ErrorIs(t, err, report.ErrInvalidPeriod)
	}
}

func TestMonthlyReport_StoreFailure(t *testing.T) {
	store := mocks.NewMockOrderStore()
	store.Err = errors.New("server selection timeout")

	svc := newTestReportService(store, time.Now())

	_, err := svc.MonthlyReport(context.Background(), 2024, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.Err)
}
