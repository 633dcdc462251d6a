package calendar

import (
	"fmt"
	"sort"
)

// ToAD converts a BS date to its Gregorian equivalent.
func ToAD(d Date) (Date, error) {
	if d.cal != BS {
		return Date{}, fmt.Errorf("%w: ToAD needs a BS date, got %q", ErrInvalidFormat, d.cal)
	}
	r, err := bsTable.row(d.year)
	if err != nil {
		return Date{}, err
	}
	if d.month < 1 || d.month > 12 || d.day < 1 || d.day > r[d.month-1] {
		return Date{}, fmt.Errorf("%w: BS %s", ErrInvalidDate, d)
	}

	offset := bsTable.yearStart[d.year-bsTable.firstYear]
	for m := 0; m < d.month-1; m++ {
		offset += r[m]
	}
	offset += d.day - 1

	return FromTime(bsTable.epoch.AddDate(0, 0, offset)), nil
}

// ToBS converts a Gregorian date to its BS equivalent.
func ToBS(d Date) (Date, error) {
	if d.cal != AD {
		return Date{}, fmt.Errorf("%w: ToBS needs an AD date, got %q", ErrInvalidFormat, d.cal)
	}
	if d.day < 1 || d.month < 1 || d.month > 12 || d.day > gregorianDaysInMonth(d.year, d.month) {
		return Date{}, fmt.Errorf("%w: AD %s", ErrInvalidDate, d)
	}
	t := d.Time()
	if t.Before(bsTable.epoch) || !t.Before(bsTable.end) {
		return Date{}, fmt.Errorf("%w: AD %s", ErrOutOfRange, d)
	}
	offset := int(t.Sub(bsTable.epoch).Hours() / 24)

	// Last year whose first day is on or before offset.
	i := sort.Search(len(bsTable.yearStart), func(i int) bool {
		return bsTable.yearStart[i] > offset
	}) - 1

	rem := offset - bsTable.yearStart[i]
	r := bsTable.months[i]
	month := 0
	for rem >= r[month] {
		rem -= r[month]
		month++
	}
	return Date{cal: BS, year: bsTable.firstYear + i, month: month + 1, day: rem + 1}, nil
}

// Convert returns d expressed in the opposite calendar.
func Convert(d Date) (Date, error) {
	switch d.cal {
	case BS:
		return ToAD(d)
	case AD:
		return ToBS(d)
	default:
		return Date{}, fmt.Errorf("%w: cannot convert the zero date", ErrInvalidFormat)
	}
}
