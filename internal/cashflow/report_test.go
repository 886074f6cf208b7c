package cashflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

func TestService_Report(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)

	entries := []*cashflow.Entry{
		{ID: 3, Date: end, Amount: dec("600")},
		{ID: 2, Date: start.AddDate(0, 0, 10), Amount: dec("-150.25")},
		{ID: 1, Date: start, Amount: dec("1000")},
	}

	repo := cashflow.NewMockRepository(ctrl)
	repo.EXPECT().
		ListEntries(gomock.Any(), cashflow.ListFilter{StartDate: &start, EndDate: &end}).
		Return(entries, nil)

	svc := cashflow.NewService(repo, time.UTC)
	report, err := svc.Report(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, "1600", report.TotalMoneyIn.String())
	assert.Equal(t, "150.25", report.TotalMoneyOut.String())
	assert.Equal(t, "1449.75", report.NetCashflow.String())
	assert.True(t, report.TotalMoneyIn.Sub(report.TotalMoneyOut).Equal(report.NetCashflow))
	assert.Equal(t, 3, report.Count)

	for _, e := range report.Transactions {
		assert.False(t, e.Date.Before(start))
		assert.False(t, e.Date.After(end))
	}
}

func TestService_Report_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := cashflow.NewService(cashflow.NewMockRepository(ctrl), time.UTC)

	_, err := svc.Report(context.Background(), time.Time{}, time.Now())
	assert.ErrorIs(t, err, apperr.ErrValidation)

	now := time.Now()
	_, err = svc.Report(context.Background(), now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.MonthlyReport(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Bounds(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	svc := cashflow.NewService(nil, manila)

	t.Run("Day", func(t *testing.T) {
		// 2025-03-05 20:00 UTC is 2025-03-06 04:00 in Manila.
		start, end := svc.DayBounds(time.Date(2025, 3, 5, 20, 0, 0, 0, time.UTC))

		assert.Equal(t, time.Date(2025, 3, 6, 0, 0, 0, 0, manila), start)
		assert.Equal(t, time.Date(2025, 3, 6, 23, 59, 59, 999_000_000, manila), end)
	})

	t.Run("WeekStartsSunday", func(t *testing.T) {
		// Wednesday.
		start, end := svc.WeekBounds(time.Date(2025, 3, 5, 12, 0, 0, 0, manila))

		assert.Equal(t, time.Sunday, start.Weekday())
		assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, manila), start)
		assert.Equal(t, time.Date(2025, 3, 8, 23, 59, 59, 999_000_000, manila), end)
	})

	t.Run("WeekOnSunday", func(t *testing.T) {
		start, _ := svc.WeekBounds(time.Date(2025, 3, 2, 8, 0, 0, 0, manila))
		assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, manila), start)
	})

	t.Run("MonthLeapYear", func(t *testing.T) {
		start, end := svc.MonthBounds(2024, time.February)

		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, manila), start)
		assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, manila), end)
	})

	t.Run("December", func(t *testing.T) {
		_, end := svc.MonthBounds(2025, time.December)
		assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 999_000_000, manila), end)
	})
}

func TestService_MonthlyReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashflow.NewMockRepository(ctrl)
	repo.EXPECT().
		ListEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f cashflow.ListFilter) ([]*cashflow.Entry, error) {
			assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
			assert.Equal(t, time.Date(2025, 4, 30, 23, 59, 59, 999_000_000, time.UTC), *f.EndDate)

			return nil, nil
		})

	svc := cashflow.NewService(repo, nil)
	report, err := svc.MonthlyReport(context.Background(), 2025, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Count)
	assert.True(t, report.NetCashflow.IsZero())
}
