package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse reads YYYY-MM-DD text as a date in cal. Leading and trailing spaces are
// ignored; any other deviation from the layout is ErrInvalidFormat. Checks run
// month first, then year coverage, then day, so "2080-13-40" is ErrInvalidDate.
func Parse(cal Calendar, raw string) (Date, error) {
	text := strings.TrimSpace(raw)
	if !isoDate.MatchString(text) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	// The regexp guarantees three all-digit fields, so Atoi cannot fail.
	year, _ := strconv.Atoi(text[0:4])
	month, _ := strconv.Atoi(text[5:7])
	day, _ := strconv.Atoi(text[8:10])

	switch cal {
	case BS:
		return NewBS(year, month, day)
	case AD:
		return NewAD(year, month, day)
	default:
		return Date{}, fmt.Errorf("%w: unknown calendar %q", ErrInvalidFormat, cal)
	}
}

// MustParse is Parse for literals in tests and tables; it panics on error.
func MustParse(cal Calendar, raw string) Date {
	d, err := Parse(cal, raw)
	if err != nil {
		panic(err)
	}
	return d
}
