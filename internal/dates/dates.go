// Package dates normalizes the two textual date formats CarLog accepts and
// does calendar-day arithmetic on them.
package dates

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// CanonicalLayout is the storage and interchange format (YYYY-MM-DD).
	CanonicalLayout = "2006-01-02"
	// DisplayLayout is the user-facing format (DD/MM/YYYY).
	DisplayLayout = "02/01/2006"
)

const secondsPerDay = 24 * 60 * 60

// Date is a calendar date with no time of day and no zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date. Out-of-range values are normalized the way time.Date does.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Canonical renders d as YYYY-MM-DD.
func (d Date) Canonical() string {
	return d.Time().Format(CanonicalLayout)
}

// Display renders d as DD/MM/YYYY.
func (d Date) Display() string {
	return d.Time().Format(DisplayLayout)
}

func (d Date) String() string {
	return d.Canonical()
}

// AddMonths advances d by n calendar months. The year rolls over as needed and
// the day is clamped to the last day of the target month, so 2024-01-31 plus
// one month is 2024-02-29.
func (d Date) AddMonths(n int) Date {
	total := int(d.Month) - 1 + n
	year := d.Year + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// AddDays advances d by n days (negative n goes back).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the signed number of calendar days from d to o: positive
// when o is later, negative when earlier, zero on the same day.
func (d Date) DaysUntil(o Date) int {
	return int((o.Time().Unix() - d.Time().Unix()) / secondsPerDay)
}

// MarshalJSON encodes d in canonical form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Canonical())
}

// UnmarshalJSON accepts either supported format.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	opt := Parse(s)
	if !opt.Valid {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = opt.Date
	return nil
}

// Optional is a Date that may be absent. An unparseable input and a missing
// input are the same state: Valid is false.
type Optional struct {
	Date  Date
	Valid bool
}

// None is the absent date.
var None = Optional{}

// Some wraps a present date.
func Some(d Date) Optional {
	return Optional{Date: d, Valid: true}
}

// MarshalJSON encodes an absent date as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return o.Date.MarshalJSON()
}

// Parse reads text as DD/MM/YYYY, then as YYYY-MM-DD. Blank input and input
// matching neither layout give None. It never fails.
func Parse(text string) Optional {
	if strings.TrimSpace(text) == "" {
		return None
	}
	for _, layout := range []string{DisplayLayout, CanonicalLayout} {
		if t, err := time.Parse(layout, text); err == nil {
			return Some(FromTime(t))
		}
	}
	return None
}

// ParsePtr is Parse for optional text fields.
func ParsePtr(text *string) Optional {
	if text == nil {
		return None
	}
	return Parse(*text)
}

// ToDisplay converts a canonical date string to DD/MM/YYYY. The second result
// is false when text is blank or unparseable.
func ToDisplay(text string) (string, bool) {
	opt := Parse(text)
	if !opt.Valid {
		return "", false
	}
	return opt.Date.Display(), true
}

// Normalize converts text in either supported format to canonical form.
func Normalize(text string) (string, bool) {
	opt := Parse(text)
	if !opt.Valid {
		return "", false
	}
	return opt.Date.Canonical(), true
}

// DaysUntil returns the days from today to d, or false when d is absent.
func DaysUntil(d Optional, today Date) (int, bool) {
	if !d.Valid {
		return 0, false
	}
	return today.DaysUntil(d.Date), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
