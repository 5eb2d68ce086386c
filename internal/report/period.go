// Package report aggregates sales, expenses and income for the reports
// screen and exports them as CSV.
package report

import (
	"errors"
	"fmt"
	"time"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var ErrUnknownPeriod = errors.New("unknown report period")

// Range is a closed time interval. End is the last instant that still
// belongs to the range.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DayRange spans the calendar days from start to end inclusive, in the
// location of start.
func DayRange(start, end time.Time) Range {
	loc := start.Location()
	s := startOfDay(start)
	e := startOfDay(end.In(loc)).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return Range{Start: s, End: e}
}

// PeriodRange returns the calendar period containing ref. Weeks start on
// Monday.
func PeriodRange(p Period, ref time.Time) (Range, error) {
	day := startOfDay(ref)
	var start, next time.Time
	switch p {
	case PeriodDay:
		start, next = day, day.AddDate(0, 0, 1)
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		next = start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		next = start.AddDate(0, 1, 0)
	case PeriodYear:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		next = start.AddDate(1, 0, 0)
	default:
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, p)
	}
	return Range{Start: start, End: next.Add(-time.Nanosecond)}, nil
}

// ISOWeekRange is Monday to Sunday of an ISO 8601 week.
func ISOWeekRange(year, week int, loc *time.Location) Range {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)
	return Range{Start: monday, End: monday.AddDate(0, 0, 7).Add(-time.Nanosecond)}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
