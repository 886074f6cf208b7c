package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

func manila(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	return loc
}

func TestTimeframeToDateRange(t *testing.T) {
	loc := manila(t)
	periods := cashflow.NewService(nil, loc)

	// Wednesday
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, loc)
	endOfDay := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	}

	tests := []struct {
		tf        Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}{
		{TimeframeToday, time.Date(2025, 3, 12, 0, 0, 0, 0, loc), endOfDay(2025, 3, 12)},
		{TimeframeThisWeek, time.Date(2025, 3, 9, 0, 0, 0, 0, loc), endOfDay(2025, 3, 15)},
		{TimeframeLastWeek, time.Date(2025, 3, 2, 0, 0, 0, 0, loc), endOfDay(2025, 3, 8)},
		{TimeframeThisMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, loc), endOfDay(2025, 3, 31)},
		{TimeframeLastMonth, time.Date(2025, 2, 1, 0, 0, 0, 0, loc), endOfDay(2025, 2, 28)},
	}

	for _, tc := range tests {
		t.Run(tc.tf.String(), func(t *testing.T) {
			start, end := timeframeToDateRange(periods, tc.tf, now)
			assert.True(t, tc.wantStart.Equal(start), "start %s", start)
			assert.True(t, tc.wantEnd.Equal(end), "end %s", end)
		})
	}
}

func TestTimeframePicker_CustomRange(t *testing.T) {
	loc := manila(t)
	picker := NewTimeframePicker(cashflow.NewService(nil, loc), TimeframeCustom)

	picker, _ = picker.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, picker.IsSelecting())

	picker.startInput.SetValue("2025-03-10")
	picker.endInput.SetValue("2025-03-01")

	picker, cmd := picker.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.EqualError(t, picker.err, "end date is before start date")

	picker.endInput.SetValue("2025-03-14")

	picker, cmd = picker.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.NoError(t, picker.err)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.True(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc).Equal(msg.Start))
	assert.True(t, time.Date(2025, 3, 14, 23, 59, 59, int(999*time.Millisecond), loc).Equal(msg.End))
}
