// Package timeutil converts the calendar dates and clock times carried by
// appointments into comparable values.
//
// Dates may arrive from several upstream sources (manual entry, legacy
// backend rows), so date normalization is forgiving. An unparseable value is
// always reported as an error and never conflated with "now" or the epoch.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const ISODateLayout = "2006-01-02"

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidDateFormat = errors.New("invalid date format")
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ToMinutes parses a 24-hour "HH:MM" clock into minutes since midnight.
// A trailing ":SS" is accepted and ignored.
func ToMinutes(hhmm string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(hhmm))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
	}

	h, min := digits(m[1]), digits(m[2])
	if h > 23 || min > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
	}
	if m[3] != "" {
		if digits(m[3]) > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, hhmm)
		}
	}

	return h*60 + min, nil
}

// digits converts a submatch that the clock and date patterns restrict to
// ASCII digits, so the conversion cannot fail.
func digits(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("timeutil: non-digit submatch %q", s))
	}
	return n
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

type dateMatcher struct {
	pattern *regexp.Regexp
	// indexes of year, month and day inside the submatch slice
	year, month, day int
}

// Tried in order before falling back to the generic parser.
var dateMatchers = []dateMatcher{
	{pattern: regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`), year: 1, month: 2, day: 3},
	{pattern: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), year: 3, month: 2, day: 1},
	{pattern: regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), year: 3, month: 2, day: 1},
}

func (dm dateMatcher) match(raw string, loc *time.Location) (time.Time, bool) {
	m := dm.pattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}

	y, mo, d := digits(m[dm.year]), digits(m[dm.month]), digits(m[dm.day])

	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
	// time.Date normalizes 31/02 into March; reject instead.
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate resolves raw into midnight of its calendar day in loc.
func NormalizeDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDateFormat)
	}

	for _, dm := range dateMatchers {
		if dm.pattern.MatchString(raw) {
			if t, ok := dm.match(raw, loc); ok {
				return t, nil
			}
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
		}
	}

	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
	}
	return StartOfDay(t, loc), nil
}

// ParseISODate accepts only "YYYY-MM-DD".
func ParseISODate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(ISODateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
	}
	return t, nil
}

// ToTime combines a date and an "HH:MM" clock into an instant in loc.
func ToTime(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := NormalizeDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ToMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location()), nil
}

// ToTimestamp is ToTime as epoch milliseconds, the comparable form used to
// order appointments.
func ToTimestamp(date, clock string, loc *time.Location) (int64, error) {
	t, err := ToTime(date, clock, loc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
