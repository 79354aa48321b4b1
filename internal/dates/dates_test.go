package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Blank(t *testing.T) {
	for _, in := range []string{"", " ", "  ", "\t\n"} {
		assert.False(t, Parse(in).Valid, "input %q", in)
	}
	assert.False(t, ParsePtr(nil).Valid)
}

func TestParse_BothFormatsAgree(t *testing.T) {
	display := Parse("15/03/2024")
	canonical := Parse("2024-03-15")

	require.True(t, display.Valid)
	require.True(t, canonical.Valid)
	assert.Equal(t, canonical.Date, display.Date)
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 15}, display.Date)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"garbage", "not-a-date"},
		{"bad-date", "bad-date"},
		{"two digit year", "15/03/24"},
		{"single digit day", "5/03/2024"},
		{"invalid day", "31/02/2024"},
		{"invalid canonical day", "2023-02-29"},
		{"month first", "03/15/2024"},
		{"slashes canonical", "2024/03/15"},
		{"leading space", " 2024-03-15"},
		{"trailing text", "2024-03-15T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, None, Parse(tt.in))
		})
	}
}

func TestParse_LeapDay(t *testing.T) {
	opt := Parse("29/02/2024")
	require.True(t, opt.Valid)
	assert.Equal(t, New(2024, time.February, 29), opt.Date)
}

func TestToDisplay(t *testing.T) {
	out, ok := ToDisplay("2024-03-15")
	assert.True(t, ok)
	assert.Equal(t, "15/03/2024", out)

	_, ok = ToDisplay("")
	assert.False(t, ok)
	_, ok = ToDisplay("2024-13-01")
	assert.False(t, ok)
}

func TestToDisplay_RoundTrip(t *testing.T) {
	for _, canonical := range []string{"2024-01-01", "2024-02-29", "1999-12-31", "2030-07-04"} {
		display, ok := ToDisplay(canonical)
		require.True(t, ok)
		assert.Equal(t, Parse(canonical).Date, Parse(display).Date, canonical)
	}
}

func TestNormalize(t *testing.T) {
	out, ok := Normalize("01/06/2024")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-01", out)

	_, ok = Normalize("June 1st")
	assert.False(t, ok)
}

func TestDate_AddMonths(t *testing.T) {
	tests := []struct {
		name   string
		from   Date
		months int
		want   Date
	}{
		{"leap february clamp", New(2024, time.January, 31), 1, New(2024, time.February, 29)},
		{"common february clamp", New(2023, time.January, 31), 1, New(2023, time.February, 28)},
		{"thirty day month clamp", New(2024, time.March, 31), 1, New(2024, time.April, 30)},
		{"year rollover", New(2024, time.November, 15), 2, New(2025, time.January, 15)},
		{"twelve months", New(2024, time.February, 29), 12, New(2025, time.February, 28)},
		{"six months", New(2024, time.August, 31), 6, New(2025, time.February, 28)},
		{"zero", New(2024, time.May, 5), 0, New(2024, time.May, 5)},
		{"negative", New(2024, time.January, 15), -1, New(2023, time.December, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.AddMonths(tt.months))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	today := New(2024, time.June, 15)

	days, ok := DaysUntil(Some(today), today)
	assert.True(t, ok)
	assert.Equal(t, 0, days)

	days, _ = DaysUntil(Some(today.AddDays(1)), today)
	assert.Equal(t, 1, days)

	days, _ = DaysUntil(Some(today.AddDays(-1)), today)
	assert.Equal(t, -1, days)

	days, _ = DaysUntil(Some(New(2025, time.June, 15)), today)
	assert.Equal(t, 365, days)

	_, ok = DaysUntil(None, today)
	assert.False(t, ok)
}

func TestClock_DaysUntil(t *testing.T) {
	today := New(2024, time.March, 30)
	clock := Fixed(today)

	assert.Equal(t, today, clock.Today())

	// crosses the European DST switch on 2024-03-31
	days, ok := clock.DaysUntil(Some(New(2024, time.April, 2)))
	assert.True(t, ok)
	assert.Equal(t, 3, days)

	var system Clock
	assert.Equal(t, FromTime(time.Now()), system.Today())
	days, _ = system.DaysUntil(Some(FromTime(time.Now())))
	assert.Equal(t, 0, days)
}

func TestOptional_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Last Optional `json:"last"`
		Next Date     `json:"next"`
	}{Last: None, Next: New(2024, time.July, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"last":null,"next":"2024-07-01"}`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"01/07/2024"`), &d))
	assert.Equal(t, New(2024, time.July, 1), d)
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
}
