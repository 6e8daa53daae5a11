package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmpty   = errors.New("empty schedule")
	ErrUnknown = errors.New("unrecognised date")
)

type multiplier struct {
	key   string
	value int
}

var multipliers = []multiplier{
	{"days", 1},
	{"weeks", 7},
	{"months", 30},
	{"years", 365},
}

// formats are tried in order; formats without a year take the current one.
var formats = []string{
	"_2/01",
	"_2/01/06",
	"_2/01/2006",
	"_2-01",
	"_2-01-06",
	"_2-01-2006",
	"2006-01-02",
	"Jan _2",
	"Jan _2 06",
	"Jan _2 2006",
	"January _2",
	"January _2 2006",
	"_2 Jan",
	"_2 Jan 2006",
	"_2 January",
	"_2 January 2006",
}

var ordinal = regexp.MustCompile(`([0-9])(st|nd|rd|th)\b`)

// Parse reads "<date> [HH:MM] [[for] duration]" relative to now, for example
// "tomorrow 10:00 90m", "fri 9:30 for 1h", "in 2 weeks", "12/07 14:00" or
// "10:00 2h" (today). The date part alone schedules at midnight. The duration
// is nil when it is left out.
func Parse(s string, now time.Time) (time.Time, *time.Duration, error) {
	words := strings.Fields(strings.ToLower(s))
	if len(words) == 0 {
		return time.Time{}, nil, ErrEmpty
	}

	var d *time.Duration
	if last := words[len(words)-1]; looksLikeDuration(last) {
		dur, err := time.ParseDuration(last)
		if err != nil || dur < 0 {
			return time.Time{}, nil, fmt.Errorf("duration %q: want something like 90m or 1h30m", last)
		}
		d = &dur
		words = words[:len(words)-1]
		if n := len(words); n > 0 && words[n-1] == "for" {
			words = words[:n-1]
		}
	}

	hour, minute, clock := 0, 0, false
	if n := len(words); n > 0 {
		if t, err := time.Parse("15:04", words[n-1]); err == nil {
			hour, minute, clock = t.Hour(), t.Minute(), true
			words = words[:n-1]
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := today
	if len(words) > 0 {
		var err error
		day, err = parseDate(strings.Join(words, " "), today)
		if err != nil {
			return time.Time{}, nil, err
		}
	} else if !clock {
		return time.Time{}, nil, fmt.Errorf("%q: a date or time is required", s)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
	return start, d, nil
}

// looksLikeDuration reports whether w is meant as a duration, so that a typo
// like "90x" is an error instead of part of the date.
func looksLikeDuration(w string) bool {
	if w == "" || w[0] < '0' || w[0] > '9' {
		return false
	}
	if strings.ContainsAny(w, ":/-") || ordinal.MatchString(w) {
		return false
	}
	last := w[len(w)-1]
	return last == 'm' || last == 'h' || last == 's'
}

func parseDate(s string, today time.Time) (time.Time, error) {
	for i, name := range []string{"today", "tomorrow"} {
		if len(s) >= 3 && strings.HasPrefix(name, s) || s == name {
			return today.AddDate(0, 0, i), nil
		}
	}
	for i := time.Sunday; i <= time.Saturday; i++ {
		name := strings.ToLower(i.String())
		if len(s) >= 2 && strings.HasPrefix(name, s) {
			return nextWeekday(today, i), nil
		}
	}
	if strings.HasPrefix(s, "in") {
		days, err := parseRelative(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q: %w", s, err)
		}
		return today.AddDate(0, 0, days), nil
	}
	s = ordinal.ReplaceAllString(s, "$1")
	t, err := parseAbsolute(s, today)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, err)
	}
	return t, nil
}

// parseRelative reads "in N [days|weeks|months|years]" into a number of days.
// Unit names may be shortened to any prefix.
func parseRelative(s string) (int, error) {
	s = strings.TrimPrefix(s, "in")
	s = strings.TrimSpace(s)

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, errors.New("missing quantity")
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s[i:])

	if s == "" {
		return n, nil
	}
	for _, m := range multipliers {
		if strings.HasPrefix(m.key, s) {
			return n * m.value, nil
		}
	}
	return 0, errors.New("unexpected postfix")
}

func parseAbsolute(s string, today time.Time) (time.Time, error) {
	for _, layout := range formats {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		year := t.Year()
		if year == 0 {
			year = today.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, today.Location()), nil
	}
	return time.Time{}, ErrUnknown
}

func nextWeekday(t time.Time, d time.Weekday) time.Time {
	day := d - t.Weekday()
	if day < 0 {
		day += 7
	}
	return t.AddDate(0, 0, int(day))
}

// Describe names day relative to now: "today", "tomorrow", "in 3 days",
// "in 2 weeks", "in 1 month" or "4 days ago".
func Describe(day, now time.Time) string {
	a := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(a.Sub(b).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return strconv.Itoa(-days) + " days ago"
	case days < 14:
		return "in " + strconv.Itoa(days) + " days"
	// max 1 month
	case days <= 31:
		return "in " + strconv.Itoa(days/7) + " weeks"
	default:
		postfix := ""
		months := days / 31
		if months > 1 {
			postfix = "s"
		}
		return "in " + strconv.Itoa(months) + " month" + postfix
	}
}

// Format renders start and d so that Parse reads them back.
func Format(start time.Time, d *time.Duration) string {
	s := start.Format("02/01/2006 15:04")
	if d != nil {
		s += " " + strconv.FormatInt(int64(*d/time.Minute), 10) + "m"
	}
	return s
}
