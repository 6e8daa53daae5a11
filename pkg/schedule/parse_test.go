package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

// Thursday
var now = time.Date(2025, time.June, 5, 14, 30, 0, 0, time.UTC)

func day(month time.Month, d, hour, min int) time.Time {
	return time.Date(2025, month, d, hour, min, 0, 0, time.UTC)
}

func Test_parseRelative(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"in1", 1, false},
		{"in 1", 1, false},
		{"in 11", 11, false},
		{"in 1 day", 1, false},
		{"in 3 days", 3, false},
		{"in 1 week", 7, false},
		{"in 1w", 7, false},
		{"in 1 month", 30, false},
		{"in 2 year", 365 * 2, false},
		{"in 1wek", 0, true},
		{"in days", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			is := is.New(t)
			got, err := parseRelative(tt.input)
			is.Equal(err != nil, tt.wantErr)
			is.Equal(got, tt.want)
		})
	}
}

func TestParse(t *testing.T) {
	hour, ninety := time.Hour, 90*time.Minute
	tests := []struct {
		input string
		start time.Time
		d     *time.Duration
	}{
		{"today", day(6, 5, 0, 0), nil},
		{"tomorrow 10:00", day(6, 6, 10, 0), nil},
		{"Tomorrow 10:00 90m", day(6, 6, 10, 0), &ninety},
		{"tom 9:30 for 1h", day(6, 6, 9, 30), &hour},
		{"10:00 1h30m", day(6, 5, 10, 0), &ninety},
		{"thursday", day(6, 5, 0, 0), nil},
		{"fri 08:15", day(6, 6, 8, 15), nil},
		{"mon", day(6, 9, 0, 0), nil},
		{"in 2 weeks 12:00", day(6, 19, 12, 0), nil},
		{"12/07", day(7, 12, 0, 0), nil},
		{"12/07/2026 07:45 1h", time.Date(2026, 7, 12, 7, 45, 0, 0, time.UTC), &hour},
		{"jul 3rd 16:00", day(7, 3, 16, 0), nil},
		{"3 July", day(7, 3, 0, 0), nil},
		{"2025-12-24", day(12, 24, 0, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			is := is.New(t)
			start, d, err := Parse(tt.input, now)
			is.NoErr(err)
			is.Equal(start, tt.start)
			is.Equal(d == nil, tt.d == nil)
			if tt.d != nil {
				is.Equal(*d, *tt.d)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	is := is.New(t)

	_, _, err := Parse("  ", now)
	is.True(errors.Is(err, ErrEmpty))

	_, _, err = Parse("someday", now)
	is.True(errors.Is(err, ErrUnknown))

	for _, input := range []string{"90m", "tomorrow 90x", "tomorrow -5m", "in 1wek", "31/02 25:00"} {
		_, _, err := Parse(input, now)
		is.True(err != nil) // each input is rejected
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	is := is.New(t)
	d := 150 * time.Minute
	start := day(8, 1, 9, 5)

	s := Format(start, &d)
	is.Equal(s, "01/08/2025 09:05 150m")

	got, gd, err := Parse(s, now)
	is.NoErr(err)
	is.Equal(got, start)
	is.Equal(*gd, d)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		day  time.Time
		want string
	}{
		{day(6, 5, 23, 0), "today"},
		{day(6, 6, 0, 0), "tomorrow"},
		{day(6, 4, 0, 0), "yesterday"},
		{day(6, 1, 0, 0), "4 days ago"},
		{day(6, 10, 0, 0), "in 5 days"},
		{day(6, 26, 0, 0), "in 3 weeks"},
		{day(8, 20, 0, 0), "in 2 months"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			is := is.New(t)
			is.Equal(Describe(tt.day, now), tt.want)
		})
	}
}
