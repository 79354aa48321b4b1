package dates

import "time"

// Clock supplies the current instant. A nil Clock reads the system clock.
type Clock func() time.Time

// SystemClock reads time.Now.
var SystemClock Clock = time.Now

// Fixed returns a Clock frozen at noon local time on d.
func Fixed(d Date) Clock {
	t := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.Local)
	return func() time.Time { return t }
}

// Today returns the local calendar date.
func (c Clock) Today() Date {
	if c == nil {
		return FromTime(time.Now())
	}
	return FromTime(c())
}

// DaysUntil counts calendar days from today to d.
func (c Clock) DaysUntil(d Optional) (int, bool) {
	return DaysUntil(d, c.Today())
}
