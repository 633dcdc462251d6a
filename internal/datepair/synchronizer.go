package datepair

import (
	"strings"

	"onboarding/internal/calendar"
	"onboarding/internal/fielderr"
)

// Change is one observable write to a field of a pair.
type Change struct {
	Pair    string `json:"pair"`
	Field   string `json:"field"`
	Side    Side   `json:"side"`
	Text    string `json:"text"`
	Derived bool   `json:"derived"`
}

// Listener is the general "field changed" notification path. It observes user
// writes and derived writes alike and may call back into OnFieldEdited; such
// calls arrive while the pair is Syncing and are ignored.
type Listener func(Change)

// Outcome reports what a single OnFieldEdited call did.
type Outcome struct {
	Side Side `json:"side"`
	// Ignored is set when the call arrived while the pair was Syncing.
	Ignored bool `json:"ignored,omitempty"`
	// Err is the error now carried by the edited side, if any.
	Err *fielderr.FieldError `json:"error,omitempty"`
	// Derived is the write made to the paired field, nil when nothing changed.
	Derived *Change `json:"derived,omitempty"`
}

// Converter converts a date to the opposite calendar.
type Converter func(calendar.Date) (calendar.Date, error)

// Synchronizer owns a Pair and is its only writer. It is not safe for
// concurrent use; callers serialize access per pair.
type Synchronizer struct {
	pair      *Pair
	convert   Converter
	listeners []Listener
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithListener registers a listener on the field-changed path.
func WithListener(l Listener) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// WithConverter replaces the calendar converter (tests only).
func WithConverter(c Converter) Option {
	return func(s *Synchronizer) {
		if c != nil {
			s.convert = c
		}
	}
}

// New attaches a synchronizer to pair.
func New(pair *Pair, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		pair:    pair,
		convert: calendar.Convert,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pair exposes the synchronized pair for reading.
func (s *Synchronizer) Pair() *Pair {
	return s.pair
}

// OnFieldEdited is the single entry point for user edits. A successful edit
// produces at most one write to the paired field; a failed edit records an
// error on the edited side and leaves the paired side untouched.
//
// The pair is Syncing for the whole call and returns to Idle before the call
// returns, so the next edit is always accepted.
func (s *Synchronizer) OnFieldEdited(side Side, raw string) Outcome {
	p := s.pair
	if p.phase == Syncing {
		return Outcome{Side: side, Ignored: true}
	}
	if !side.valid() {
		return Outcome{Side: side, Err: fielderr.New(p.name, fielderr.InvalidFormat, "unknown date field side")}
	}

	p.phase, p.origin = Syncing, side
	defer func() {
		p.phase, p.origin = Idle, SideNone
	}()

	p.lastEdited = side
	if p.text[side] != raw {
		p.text[side] = raw
		s.notify(Change{Pair: p.name, Field: p.FieldName(side), Side: side, Text: raw})
	}

	if strings.TrimSpace(raw) == "" {
		// Requiredness belongs to validation; an empty field just has no value.
		delete(p.value, side)
		delete(p.errs, side)
		return Outcome{Side: side}
	}

	parsed, err := calendar.Parse(side.Calendar(), raw)
	if err != nil {
		return s.fail(side, err)
	}
	derived, err := s.convert(parsed)
	if err != nil {
		// Keep the previous value so the pair stays consistent.
		return s.fail(side, err)
	}

	p.value[side] = parsed
	delete(p.errs, side)

	out := Outcome{Side: side}
	if change, wrote := s.applyDerived(side.Opposite(), derived); wrote {
		out.Derived = &change
	}
	return out
}

// applyDerived is the internal setter for the paired field. It never goes
// through OnFieldEdited, so the write cannot be mistaken for a user edit.
func (s *Synchronizer) applyDerived(side Side, d calendar.Date) (Change, bool) {
	p := s.pair
	text := d.String()
	if p.value[side] == d && p.text[side] == text && p.errs[side] == "" {
		return Change{}, false
	}
	p.value[side] = d
	p.text[side] = text
	delete(p.errs, side)

	change := Change{Pair: p.name, Field: p.FieldName(side), Side: side, Text: text, Derived: true}
	s.notify(change)
	return change, true
}

func (s *Synchronizer) fail(side Side, err error) Outcome {
	kind := fielderr.KindOf(err)
	s.pair.errs[side] = kind
	return Outcome{
		Side: side,
		Err:  fielderr.New(s.pair.FieldName(side), kind, fielderr.MessageFor(kind)),
	}
}

func (s *Synchronizer) notify(c Change) {
	for _, l := range s.listeners {
		l(c)
	}
}
