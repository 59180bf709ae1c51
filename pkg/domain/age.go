package domain

import "time"

// DateLayout is the calendar date format accepted at the API boundary.
const DateLayout = "2006-01-02"

// WholeYears returns completed years between birthDate and today using a
// month/day comparison: the year difference is decremented when today's
// month/day precedes the birth month/day. Used by the eligibility evaluator
// and the statistics age buckets.
func WholeYears(birthDate, today time.Time) int {
	years := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		years--
	}
	return years
}

// ApproxYearsByDays returns floor(days(today - birthDate) / 365). Used only by
// the registration validator. It drifts from WholeYears around birthdays
// because leap days are ignored; callers must not mix the two.
func ApproxYearsByDays(birthDate, today time.Time) int {
	return floorDiv(DaysBetween(birthDate, today), 365)
}

// DaysBetween returns the number of calendar days from "from" to "to",
// ignoring time of day and location offsets.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Today truncates t to its calendar date in UTC.
func Today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
