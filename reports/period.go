package reports

import (
	"strings"
	"time"

	"finreport/models"
)

// IsAllTime reports whether keyword is the no-date-filter sentinel.
func IsAllTime(keyword string) bool {
	return normalizePeriod(keyword) == models.AllTime
}

// ResolvePeriod maps a period keyword to an inclusive [start, end] window
// relative to now, in now's location. Weeks start on Monday.
func ResolvePeriod(now time.Time, keyword string) (time.Time, time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	weekStart := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	quarterStart := time.Date(now.Year(), now.Month()-(now.Month()-1)%3, 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var start, next time.Time

	switch normalizePeriod(keyword) {
	case "today":
		start, next = day, day.AddDate(0, 0, 1)
	case "yesterday":
		start, next = day.AddDate(0, 0, -1), day
	case "this week":
		start, next = weekStart, weekStart.AddDate(0, 0, 7)
	case "last week":
		start, next = weekStart.AddDate(0, 0, -7), weekStart
	case "this month":
		start, next = monthStart, monthStart.AddDate(0, 1, 0)
	case "last month":
		start, next = monthStart.AddDate(0, -1, 0), monthStart
	case "this quarter":
		start, next = quarterStart, quarterStart.AddDate(0, 3, 0)
	case "last quarter":
		start, next = quarterStart.AddDate(0, -3, 0), quarterStart
	case "this year":
		start, next = yearStart, yearStart.AddDate(1, 0, 0)
	case "last year":
		start, next = yearStart.AddDate(-1, 0, 0), yearStart
	case "last 7 days":
		start, next = day.AddDate(0, 0, -6), day.AddDate(0, 0, 1)
	case "last 30 days":
		start, next = day.AddDate(0, 0, -29), day.AddDate(0, 0, 1)
	default:
		return time.Time{}, time.Time{}, ErrUnknownPeriod
	}

	return start, EndOf(next), nil
}

// EndOf returns the last instant Postgres can store before next.
func EndOf(next time.Time) time.Time {
	return next.Add(-time.Microsecond)
}

func normalizePeriod(keyword string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	keyword = strings.ReplaceAll(keyword, "_", " ")
	return strings.Join(strings.Fields(keyword), " ")
}
