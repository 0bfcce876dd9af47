// Package calendar provides a day-granular date type for the timeline.
//
// A Date carries no time-of-day and no zone, so the difference between two
// dates is a count of calendar days and never drifts across daylight-saving
// boundaries.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day, stored as days since 1970-01-01.
type Date int32

// New returns the Date for the given year, month and day. Out-of-range values
// are normalized the same way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date(t.Unix() / 86400)
}

// Of returns the calendar day of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the current local calendar day.
func Today() Date {
	return Of(time.Now())
}

// Parse accepts a YYYY-MM-DD date or an RFC3339 timestamp. For timestamps the
// wall-clock date in the timestamp's own offset is used.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Of(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Of(t), nil
	}
	if len(s) > len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return Of(t), nil
		}
	}
	return 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC3339", s)
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// YMD returns the year, month and day.
func (d Date) YMD() (int, time.Month, int) {
	return d.Time().Date()
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return d + Date(n)
}

// AddMonths returns d shifted by n months, normalized like time.AddDate.
func (d Date) AddMonths(n int) Date {
	return Of(d.Time().AddDate(0, n, 0))
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	y, m, _ := d.YMD()
	return New(y, m, 1)
}

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int {
	y, m, _ := d.YMD()
	return int(New(y, m+1, 1) - New(y, m, 1))
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d < o }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d > o }

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b Date) int {
	return int(b - a)
}

// Max returns the later of a and b.
func Max(a, b Date) Date {
	if a > b {
		return a
	}
	return b
}

// Min returns the earlier of a and b.
func Min(a, b Date) Date {
	if a < b {
		return a
	}
	return b
}

// Ptr returns a pointer to a copy of d.
func Ptr(d Date) *Date {
	return &d
}
