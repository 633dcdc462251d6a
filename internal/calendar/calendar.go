// Package calendar converts dates between the Bikram Sambat (BS) and Gregorian
// (AD) calendars.
//
// BS month lengths are irregular and vary by year, so conversions are driven by
// an embedded reference table (bs_months.yaml) rather than arithmetic. Dates
// outside the table are rejected with ErrOutOfRange. Months are one-based in
// both calendars.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Calendar tags which calendar system a Date belongs to.
type Calendar string

const (
	BS Calendar = "BS"
	AD Calendar = "AD"
)

// Opposite returns the other calendar.
func (c Calendar) Opposite() Calendar {
	if c == BS {
		return AD
	}
	return BS
}

// Valid reports whether c is a known calendar.
func (c Calendar) Valid() bool {
	return c == BS || c == AD
}

// ParseCalendar accepts "BS" or "AD" (case-sensitive, as used on the wire).
func ParseCalendar(s string) (Calendar, error) {
	c := Calendar(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown calendar %q", ErrInvalidFormat, s)
	}
	return c, nil
}

var (
	// ErrInvalidFormat is returned for text that is not YYYY-MM-DD.
	ErrInvalidFormat = errors.New("invalid date format")
	// ErrOutOfRange is returned for dates the reference table does not cover.
	ErrOutOfRange = errors.New("date out of supported range")
	// ErrInvalidDate is returned for well-formed but impossible dates.
	ErrInvalidDate = errors.New("invalid date")
)

// Date is an immutable calendar date tagged with its calendar system. The zero
// value is "no date" and reports IsZero.
type Date struct {
	cal   Calendar
	year  int
	month int
	day   int
}

// NewBS validates and constructs a Bikram Sambat date.
func NewBS(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: BS month %d", ErrInvalidDate, month)
	}
	n, err := bsTable.daysInMonth(year, month)
	if err != nil {
		return Date{}, err
	}
	if day < 1 || day > n {
		return Date{}, fmt.Errorf("%w: BS %04d-%02d has %d days, got %d", ErrInvalidDate, year, month, n, day)
	}
	return Date{cal: BS, year: year, month: month, day: day}, nil
}

// NewAD validates and constructs a Gregorian date.
func NewAD(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: AD month %d", ErrInvalidDate, month)
	}
	if year < minCivilYear || year > maxCivilYear {
		return Date{}, fmt.Errorf("%w: AD year %d", ErrOutOfRange, year)
	}
	if day < 1 || day > gregorianDaysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: AD %04d-%02d has %d days, got %d", ErrInvalidDate, year, month, gregorianDaysInMonth(year, month), day)
	}
	return Date{cal: AD, year: year, month: month, day: day}, nil
}

// FromTime returns the AD date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{cal: AD, year: y, month: int(m), day: d}
}

func (d Date) Calendar() Calendar { return d.cal }
func (d Date) Year() int          { return d.year }
func (d Date) Month() int         { return d.month }
func (d Date) Day() int           { return d.day }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.cal == ""
}

// String formats d as YYYY-MM-DD. The calendar tag is not part of the text.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Time returns midnight UTC of an AD date. It panics for BS dates; convert
// first.
func (d Date) Time() time.Time {
	if d.cal != AD {
		panic("calendar: Time called on a non-AD date")
	}
	return time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than other. Both must share a calendar.
func (d Date) Before(other Date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

type dateJSON struct {
	Calendar Calendar `json:"calendar"`
	Value    string   `json:"value"`
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(dateJSON{Calendar: d.cal, Value: d.String()})
}

// UnmarshalJSON re-validates the stored value so a tampered or stale record
// cannot smuggle an impossible date past the constructors.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var raw dateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	cal, err := ParseCalendar(string(raw.Calendar))
	if err != nil {
		return err
	}
	parsed, err := Parse(cal, raw.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

const (
	minCivilYear = 1
	maxCivilYear = 9999
)

func gregorianDaysInMonth(year, month int) int {
	switch month {
	case 2:
		if isGregorianLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isGregorianLeap(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the month length for either calendar.
func DaysInMonth(cal Calendar, year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	switch cal {
	case BS:
		return bsTable.daysInMonth(year, month)
	case AD:
		return gregorianDaysInMonth(year, month), nil
	default:
		return 0, fmt.Errorf("%w: unknown calendar %q", ErrInvalidFormat, cal)
	}
}
