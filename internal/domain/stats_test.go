package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsPeriodValid(t *testing.T) {
	for _, p := range []StatsPeriod{StatsPeriodDay, StatsPeriodWeek, StatsPeriodMonth, StatsPeriodYear, StatsPeriodAllTime} {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, StatsPeriod("decade").Valid())
	assert.False(t, StatsPeriod("").Valid())
}

func TestStatsPeriodBounds(t *testing.T) {
	// A Wednesday.
	now := time.Date(2025, time.March, 12, 15, 30, 0, 0, time.Local)
	endOfToday := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.Local)

	tests := []struct {
		period StatsPeriod
		start  time.Time
	}{
		{StatsPeriodDay, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.Local)},
		{StatsPeriodWeek, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local)},
		{StatsPeriodMonth, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)},
		{StatsPeriodYear, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local)},
		{StatsPeriodAllTime, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end := tt.period.Bounds(now)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, endOfToday, end)
		})
	}
}

func TestStatsPeriodBounds_WeekStartsMonday(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2025, time.March, 16, 10, 0, 0, 0, time.Local)
	start, _ := StatsPeriodWeek.Bounds(sunday)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local), start)
}
