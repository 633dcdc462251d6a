// Package fielderr describes recoverable, per-field errors surfaced next to a
// form input. None of them is fatal; each blocks only the "continue" action of
// the step that owns the field.
package fielderr

import (
	"errors"
	"sort"

	"onboarding/internal/calendar"
)

// Kind classifies a field error.
type Kind string

const (
	InvalidFormat   Kind = "invalid_format"
	OutOfRange      Kind = "out_of_range"
	InvalidDate     Kind = "invalid_date"
	Required        Kind = "required"
	NotAllowed      Kind = "not_allowed"
	TooLarge        Kind = "too_large"
	UnsupportedType Kind = "unsupported_type"
)

// FieldError is a single error attached to a named field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// New builds a FieldError.
func New(field string, kind Kind, message string) *FieldError {
	return &FieldError{Field: field, Kind: kind, Message: message}
}

// Errors maps field name to the first error recorded for it.
type Errors map[string]FieldError

// Add records e unless the field already carries an error; the first error
// per field wins.
func (e Errors) Add(fe FieldError) {
	if _, exists := e[fe.Field]; exists {
		return
	}
	e[fe.Field] = fe
}

// Has reports whether field carries an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Kinds flattens the map to field -> kind, the shape the form renders.
func (e Errors) Kinds() map[string]Kind {
	out := make(map[string]Kind, len(e))
	for field, fe := range e {
		out[field] = fe.Kind
	}
	return out
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for field := range e {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// KindOf maps a calendar error to its field error kind. Unknown errors are
// reported as InvalidFormat, the most conservative reading of bad input.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, calendar.ErrOutOfRange):
		return OutOfRange
	case errors.Is(err, calendar.ErrInvalidDate):
		return InvalidDate
	default:
		return InvalidFormat
	}
}

// MessageFor returns the display message for a calendar failure on a date field.
func MessageFor(kind Kind) string {
	switch kind {
	case OutOfRange:
		return "Date is outside the supported calendar range"
	case InvalidDate:
		return "Date does not exist in this calendar"
	case Required:
		return "This field is required"
	default:
		return "Date must be in YYYY-MM-DD format"
	}
}
