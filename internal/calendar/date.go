// internal/calendar/date.go
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the textual form used for JSON and persisted periods.
const Layout = "2006-01-02T15:04:05.000Z07:00"

const day = 24 * time.Hour

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date is an immutable instant with millisecond precision.
type Date struct {
	t time.Time
}

// NewDate wraps t, dropping sub-millisecond precision and the monotonic reading.
// The location of t is kept as is.
func NewDate(t time.Time) Date {
	return Date{t: t.Truncate(time.Millisecond)}
}

// Now returns the current instant.
func Now() Date {
	return NewDate(time.Now())
}

// ParseDate accepts RFC 3339 timestamps, zone-less timestamps and plain dates.
// Zone-less input is read as UTC.
func ParseDate(s string) (Date, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// MustParseDate is like ParseDate but panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Time() time.Time        { return d.t }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Before(o Date) bool     { return d.t.Before(o.t) }
func (d Date) After(o Date) bool      { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool      { return d.t.Equal(o.t) }
func (d Date) Compare(o Date) int     { return d.t.Compare(o.t) }
func (d Date) Format(l string) string { return d.t.Format(l) }

// EndOfDay returns the last millisecond of d's calendar day in its own location.
func (d Date) EndOfDay() Date {
	y, m, dd := d.t.Date()
	return Date{t: time.Date(y, m, dd, 23, 59, 59, int(999*time.Millisecond), d.t.Location())}
}

// AddDays shifts d by n calendar days in its own location.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.t.Format(Layout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.t.Format(Layout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
