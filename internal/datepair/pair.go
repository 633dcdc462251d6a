// Package datepair keeps two linked date fields (one BS, one AD) describing the
// same day in sync while the user edits either of them.
package datepair

import (
	"encoding/json"
	"fmt"

	"onboarding/internal/calendar"
	"onboarding/internal/fielderr"
)

// Side names one of the two fields of a pair.
type Side string

const (
	SideNone Side = ""
	SideBS   Side = "BS"
	SideAD   Side = "AD"
)

// Calendar returns the calendar a side is entered in.
func (s Side) Calendar() calendar.Calendar {
	return calendar.Calendar(s)
}

// Opposite returns the paired side.
func (s Side) Opposite() Side {
	switch s {
	case SideBS:
		return SideAD
	case SideAD:
		return SideBS
	default:
		return SideNone
	}
}

func (s Side) valid() bool {
	return s == SideBS || s == SideAD
}

// ParseSide accepts "BS" or "AD".
func ParseSide(s string) (Side, error) {
	side := Side(s)
	if !side.valid() {
		return SideNone, fmt.Errorf("unknown side %q", s)
	}
	return side, nil
}

// Phase is the synchronizer state of a pair.
type Phase int

const (
	// Idle accepts user edits.
	Idle Phase = iota
	// Syncing means an edit is being applied; edits arriving now can only come
	// from the notification path re-entering and are ignored.
	Syncing
)

func (p Phase) String() string {
	if p == Syncing {
		return "syncing"
	}
	return "idle"
}

// Pair is the state of one linked (BS, AD) field pair. Whenever both values are
// present and the pair is Idle they denote the same day.
//
// Fields are unexported: only a Synchronizer mutates a Pair.
type Pair struct {
	name       string
	text       map[Side]string
	value      map[Side]calendar.Date
	errs       map[Side]fielderr.Kind
	lastEdited Side

	phase  Phase
	origin Side
}

// NewPair creates an empty pair. name prefixes the field names: a pair named
// "dob" owns the fields "dobBS" and "dobAD".
func NewPair(name string) *Pair {
	return &Pair{
		name:  name,
		text:  map[Side]string{},
		value: map[Side]calendar.Date{},
		errs:  map[Side]fielderr.Kind{},
	}
}

func (p *Pair) Name() string { return p.name }

// FieldName returns the form field name of a side, e.g. "dobBS".
func (p *Pair) FieldName(side Side) string {
	return p.name + string(side)
}

// Text returns the raw text currently shown in a side's field.
func (p *Pair) Text(side Side) string { return p.text[side] }

// Value returns the last valid date of a side, or the zero Date.
func (p *Pair) Value(side Side) calendar.Date { return p.value[side] }

// Err returns the error kind carried by a side, or "".
func (p *Pair) Err(side Side) fielderr.Kind { return p.errs[side] }

func (p *Pair) LastEdited() Side { return p.lastEdited }

// Phase returns the current phase and, while Syncing, the side whose edit is
// being applied.
func (p *Pair) Phase() (Phase, Side) { return p.phase, p.origin }

// Consistent reports whether the pair honours its round-trip contract: either
// side is missing, or AD == ToAD(BS).
func (p *Pair) Consistent() bool {
	bs, ad := p.value[SideBS], p.value[SideAD]
	if bs.IsZero() || ad.IsZero() {
		return true
	}
	converted, err := calendar.ToAD(bs)
	return err == nil && converted == ad
}

// Snapshot is a read-only copy of a Pair for validation and rendering.
type Snapshot struct {
	Name       string                 `json:"name"`
	BSText     string                 `json:"bs_text"`
	ADText     string                 `json:"ad_text"`
	BS         calendar.Date          `json:"bs"`
	AD         calendar.Date          `json:"ad"`
	LastEdited Side                   `json:"last_edited,omitempty"`
	Errors     map[Side]fielderr.Kind `json:"errors,omitempty"`
}

// Snapshot copies the pair.
func (p *Pair) Snapshot() Snapshot {
	errs := make(map[Side]fielderr.Kind, len(p.errs))
	for side, kind := range p.errs {
		errs[side] = kind
	}
	return Snapshot{
		Name:       p.name,
		BSText:     p.text[SideBS],
		ADText:     p.text[SideAD],
		BS:         p.value[SideBS],
		AD:         p.value[SideAD],
		LastEdited: p.lastEdited,
		Errors:     errs,
	}
}

// Text returns the raw text of a side in the snapshot.
func (s Snapshot) Text(side Side) string {
	if side == SideBS {
		return s.BSText
	}
	return s.ADText
}

// Value returns the date of a side in the snapshot.
func (s Snapshot) Value(side Side) calendar.Date {
	if side == SideBS {
		return s.BS
	}
	return s.AD
}

// FieldName mirrors Pair.FieldName.
func (s Snapshot) FieldName(side Side) string {
	return s.Name + string(side)
}

// pairRecord is the persisted form; phase is never stored because a pair at
// rest is always Idle.
type pairRecord struct {
	Name       string                 `json:"name"`
	BSText     string                 `json:"bs_text"`
	ADText     string                 `json:"ad_text"`
	BS         calendar.Date          `json:"bs"`
	AD         calendar.Date          `json:"ad"`
	LastEdited Side                   `json:"last_edited,omitempty"`
	Errors     map[Side]fielderr.Kind `json:"errors,omitempty"`
}

func (p *Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal(pairRecord(p.Snapshot()))
}

func (p *Pair) UnmarshalJSON(b []byte) error {
	var rec pairRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if !rec.BS.IsZero() && rec.BS.Calendar() != calendar.BS {
		return fmt.Errorf("pair %s: bs value tagged %s", rec.Name, rec.BS.Calendar())
	}
	if !rec.AD.IsZero() && rec.AD.Calendar() != calendar.AD {
		return fmt.Errorf("pair %s: ad value tagged %s", rec.Name, rec.AD.Calendar())
	}
	restored := NewPair(rec.Name)
	restored.text[SideBS] = rec.BSText
	restored.text[SideAD] = rec.ADText
	if !rec.BS.IsZero() {
		restored.value[SideBS] = rec.BS
	}
	if !rec.AD.IsZero() {
		restored.value[SideAD] = rec.AD
	}
	for side, kind := range rec.Errors {
		restored.errs[side] = kind
	}
	restored.lastEdited = rec.LastEdited
	if !restored.Consistent() {
		return fmt.Errorf("pair %s: stored values %s / %s are not the same day", rec.Name, rec.BS, rec.AD)
	}
	*p = *restored
	return nil
}
