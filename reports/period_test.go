package reports

import (
	"testing"
	"time"

	"gotest.tools/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	// Wednesday
	now := time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		keyword string
		start   time.Time
		next    time.Time
	}{
		{"today", day(2024, time.May, 15), day(2024, time.May, 16)},
		{"yesterday", day(2024, time.May, 14), day(2024, time.May, 15)},
		{"this week", day(2024, time.May, 13), day(2024, time.May, 20)},
		{"last_week", day(2024, time.May, 6), day(2024, time.May, 13)},
		{"This Month", day(2024, time.May, 1), day(2024, time.June, 1)},
		{"last month", day(2024, time.April, 1), day(2024, time.May, 1)},
		{"this quarter", day(2024, time.April, 1), day(2024, time.July, 1)},
		{"last quarter", day(2024, time.January, 1), day(2024, time.April, 1)},
		{"this year", day(2024, time.January, 1), day(2025, time.January, 1)},
		{"last year", day(2023, time.January, 1), day(2024, time.January, 1)},
		{"last 7 days", day(2024, time.May, 9), day(2024, time.May, 16)},
		{"  last   30 days ", day(2024, time.April, 16), day(2024, time.May, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			start, end, err := ResolvePeriod(now, tt.keyword)
			assert.Equal(t, nil, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.next.Add(-time.Microsecond), end)
		})
	}
}

func TestResolvePeriodWeekAndQuarterEdges(t *testing.T) {
	// Sunday still belongs to the week that started on Monday.
	start, _, err := ResolvePeriod(time.Date(2024, time.May, 19, 23, 0, 0, 0, time.UTC), "this week")
	assert.Equal(t, nil, err)
	assert.Equal(t, day(2024, time.May, 13), start)

	start, end, err := ResolvePeriod(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), "last quarter")
	assert.Equal(t, nil, err)
	assert.Equal(t, day(2023, time.October, 1), start)
	assert.Equal(t, day(2024, time.January, 1).Add(-time.Microsecond), end)
}

func TestResolvePeriodUnknown(t *testing.T) {
	_, _, err := ResolvePeriod(time.Now(), "fortnight")
	assert.Equal(t, ErrUnknownPeriod, err)
}

func TestIsAllTime(t *testing.T) {
	assert.Assert(t, IsAllTime("all time"))
	assert.Assert(t, IsAllTime("ALL_TIME"))
	assert.Assert(t, !IsAllTime("today"))
	assert.Assert(t, !IsAllTime(""))
}
