package validation

import "time"

// ComputeAge returns the number of whole years between born and today: the
// year difference, less one when today's month/day precedes the birthday.
// Only the civil dates matter; times of day and zones are ignored.
func ComputeAge(born, today time.Time) int {
	by, bm, bd := born.Date()
	ty, tm, td := today.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}
