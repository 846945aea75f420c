// Package daterange normalises optional report bounds to whole business days.
package daterange

import "time"

// Range is an inclusive, optionally open-ended time interval.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Days widens from to the start of its day and to to the last nanosecond of
// its day, both evaluated in loc. Nil bounds stay open.
func Days(from, to *time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	var r Range
	if from != nil {
		start := StartOfDay(*from, loc)
		r.From = &start
	}
	if to != nil {
		end := EndOfDay(*to, loc)
		r.To = &end
	}
	return r
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ParseDay reads a YYYY-MM-DD value in loc. Empty input yields nil.
func ParseDay(raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
