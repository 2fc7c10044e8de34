package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayout is the ISO calendar form used on the wire and in the database
const dateLayout = "2006-01-02"

// Date is a civil calendar date with no time of day or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing overflow the way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts an ISO date, an RFC3339 timestamp or a zone-less timestamp
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (or earlier for negative n)
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer interface
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// DateRange is an inclusive window of calendar days; To nil means a single day
type DateRange struct {
	From Date  `json:"from"`
	To   *Date `json:"to,omitempty"`
}

// SingleDay returns a one-day range
func SingleDay(d Date) *DateRange {
	return &DateRange{From: d}
}

// Span returns a range from..to, collapsing to a single day when they match
func Span(from, to Date) *DateRange {
	if from == to {
		return SingleDay(from)
	}
	return &DateRange{From: from, To: &to}
}

// End returns the last day of the range
func (r DateRange) End() Date {
	if r.To == nil {
		return r.From
	}
	return *r.To
}

// Widen returns a new range extended by days on both sides
func (r DateRange) Widen(days int) *DateRange {
	return Span(r.From.AddDays(-days), r.End().AddDays(days))
}
