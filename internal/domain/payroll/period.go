package payroll

import "time"

// CurrentPeriod returns the fortnightly pay period containing ref. Periods
// are anchored to Monday: the start is the most recent Monday at midnight
// and the end is thirteen days later at end of day.
func CurrentPeriod(ref time.Time) Period {
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(ref.Year(), ref.Month(), ref.Day()-weekday+1, 0, 0, 0, 0, ref.Location())
	return Period{Start: start, End: endOfFortnight(start)}
}

// NextPeriod returns the period immediately following one ending at
// currentEnd.
func NextPeriod(currentEnd time.Time) Period {
	next := currentEnd.AddDate(0, 0, 1)
	start := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, next.Location())
	return Period{Start: start, End: endOfFortnight(start)}
}

func endOfFortnight(start time.Time) time.Time {
	end := start.AddDate(0, 0, 13)
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
}
