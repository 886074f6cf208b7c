package cashflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

// Report sums the entries dated within [start, end], both ends inclusive. Transactions are newest first.
func (s *Service) Report(ctx context.Context, start, end time.Time) (*Report, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperr.Validation("startDate and endDate are required")
	}

	if end.Before(start) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}

	entries, err := s.repo.ListEntries(ctx, ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, err
	}

	report := &Report{
		StartDate:     start,
		EndDate:       end,
		TotalMoneyIn:  decimal.Zero,
		TotalMoneyOut: decimal.Zero,
		Count:         len(entries),
		Transactions:  entries,
	}

	for _, e := range entries {
		if e.Type() == TypeIn {
			report.TotalMoneyIn = report.TotalMoneyIn.Add(e.Amount)
			continue
		}

		report.TotalMoneyOut = report.TotalMoneyOut.Add(e.Magnitude())
	}

	report.NetCashflow = report.TotalMoneyIn.Sub(report.TotalMoneyOut)

	return report, nil
}

func (s *Service) DailyReport(ctx context.Context, date time.Time) (*Report, error) {
	start, end := s.DayBounds(date)
	return s.Report(ctx, start, end)
}

// WeeklyReport covers the Sunday-to-Saturday week containing date.
func (s *Service) WeeklyReport(ctx context.Context, date time.Time) (*Report, error) {
	start, end := s.WeekBounds(date)
	return s.Report(ctx, start, end)
}

func (s *Service) MonthlyReport(ctx context.Context, year, month int) (*Report, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Validationf("month must be between 1 and 12, got %d", month)
	}

	start, end := s.MonthBounds(year, time.Month(month))

	return s.Report(ctx, start, end)
}

// DayBounds returns 00:00:00.000 and 23:59:59.999 of the day containing t.
func (s *Service) DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)

	return start, endOfDay(start)
}

func (s *Service) WeekBounds(t time.Time) (time.Time, time.Time) {
	day, _ := s.DayBounds(t)
	start := day.AddDate(0, 0, -int(day.Weekday()))

	return start, endOfDay(start.AddDate(0, 0, 6))
}

// MonthBounds uses day 0 of the next month as the last day of month.
func (s *Service) MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, s.loc)

	return start, endOfDay(last)
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(999*time.Millisecond), day.Location())
}
