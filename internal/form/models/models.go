// Package models holds the onboarding form's domain types: steps, the
// per-session working state and the committed draft.
package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"onboarding/internal/datepair"
	"onboarding/internal/fielderr"
)

// StepID names a step of the form. Steps run in the order of Steps.
type StepID string

const (
	StepPersonal    StepID = "personal"
	StepCitizenship StepID = "citizenship"
	StepReview      StepID = "review"
)

// Steps is the fixed step order.
var Steps = []StepID{StepPersonal, StepCitizenship, StepReview}

// ParseStep accepts a step name.
func ParseStep(s string) (StepID, error) {
	for _, step := range Steps {
		if string(step) == s {
			return step, nil
		}
	}
	return "", fmt.Errorf("unknown step %q", s)
}

// Index returns the position of s in Steps, or -1.
func (s StepID) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the step after s, or "" for the last step.
func (s StepID) Next() StepID {
	i := s.Index()
	if i < 0 || i+1 >= len(Steps) {
		return ""
	}
	return Steps[i+1]
}

// Prev returns the step before s, or "" for the first step.
func (s StepID) Prev() StepID {
	i := s.Index()
	if i <= 0 {
		return ""
	}
	return Steps[i-1]
}

// Field names. Date pair fields are the pair name suffixed with the side.
const (
	FieldFullNameEnglish   = "fullNameEnglish"
	FieldFullNameNepali    = "fullNameNepali"
	FieldGender            = "gender"
	FieldPhone             = "phone"
	FieldAge               = "age"
	FieldCitizenshipNumber = "citizenshipNumber"
	FieldIssuedDistrict    = "issuedDistrict"
	FieldFrontFile         = "frontFile"
	FieldBackFile          = "backFile"

	PairDOB        = "dob"
	PairIssuedDate = "issuedDate"
)

// Gender values offered by the personal step.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// StepSpec lists what a step collects.
type StepSpec struct {
	ID          StepID
	Fields      []string
	Pairs       []string
	Attachments []string
}

var stepSpecs = map[StepID]StepSpec{
	StepPersonal: {
		ID:     StepPersonal,
		Fields: []string{FieldFullNameEnglish, FieldFullNameNepali, FieldGender, FieldPhone},
		Pairs:  []string{PairDOB},
	},
	StepCitizenship: {
		ID:          StepCitizenship,
		Fields:      []string{FieldCitizenshipNumber, FieldIssuedDistrict},
		Pairs:       []string{PairIssuedDate},
		Attachments: []string{FieldFrontFile, FieldBackFile},
	},
	StepReview: {ID: StepReview},
}

// SpecFor returns the spec of a step.
func SpecFor(step StepID) (StepSpec, bool) {
	s, ok := stepSpecs[step]
	return s, ok
}

// FieldKind says how an input field is handled.
type FieldKind int

const (
	FieldUnknown FieldKind = iota
	FieldPlain
	FieldDate
	FieldAttachment
)

// Classify resolves a field name within the step. For date fields it also
// returns the owning pair and the side.
func (s StepSpec) Classify(field string) (FieldKind, string, datepair.Side) {
	for _, f := range s.Fields {
		if f == field {
			return FieldPlain, "", datepair.SideNone
		}
	}
	for _, p := range s.Pairs {
		for _, side := range []datepair.Side{datepair.SideBS, datepair.SideAD} {
			if p+string(side) == field {
				return FieldDate, p, side
			}
		}
	}
	for _, a := range s.Attachments {
		if a == field {
			return FieldAttachment, "", datepair.SideNone
		}
	}
	return FieldUnknown, "", datepair.SideNone
}

// Attachment is the metadata of an uploaded document. The content itself never
// reaches the form.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// StepState is the in-progress state of one step. It survives
// back-navigation.
type StepState struct {
	Fields      map[string]string         `json:"fields"`
	Pairs       map[string]*datepair.Pair `json:"pairs"`
	Attachments map[string]Attachment     `json:"attachments"`
	Errors      fielderr.Errors           `json:"errors"`
	Completed   bool                      `json:"completed"`
}

// NewStepState creates the empty state for a step, with one pair per date pair.
func NewStepState(spec StepSpec) *StepState {
	st := &StepState{
		Fields:      map[string]string{},
		Pairs:       map[string]*datepair.Pair{},
		Attachments: map[string]Attachment{},
		Errors:      fielderr.Errors{},
	}
	for _, p := range spec.Pairs {
		st.Pairs[p] = datepair.NewPair(p)
	}
	return st
}

// Snapshots copies every pair of the step.
func (s *StepState) Snapshots() map[string]datepair.Snapshot {
	out := make(map[string]datepair.Snapshot, len(s.Pairs))
	for name, p := range s.Pairs {
		out[name] = p.Snapshot()
	}
	return out
}

// Values flattens the step into draft entries.
func (s *StepState) Values() Draft {
	d := Draft{}
	maps.Copy(d, s.Fields)
	for _, p := range s.Pairs {
		for _, side := range []datepair.Side{datepair.SideBS, datepair.SideAD} {
			if v := p.Value(side); !v.IsZero() {
				d[p.FieldName(side)] = v.String()
			}
		}
	}
	for name, a := range s.Attachments {
		d[name] = a.Name
		d[name+"ContentType"] = a.ContentType
		d[name+"Size"] = fmt.Sprint(a.Size)
	}
	return d
}

// Draft is the committed form data: field name to value.
type Draft map[string]string

// Merge copies other into d; keys in other win.
func (d Draft) Merge(other Draft) {
	maps.Copy(d, other)
}

// Clone returns an independent copy.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	maps.Copy(out, d)
	return out
}

// Status is the lifecycle of a Session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

// Session is one onboarding form being filled in.
type Session struct {
	ID          uuid.UUID             `json:"id"`
	Status      Status                `json:"status"`
	Current     StepID                `json:"current"`
	Steps       map[StepID]*StepState `json:"steps"`
	Draft       Draft                 `json:"draft"`
	Age         *int                  `json:"age,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	ExpiresAt   time.Time             `json:"expires_at"`
	SubmittedAt *time.Time            `json:"submitted_at,omitempty"`
}

// NewSession starts a form on its first step.
func NewSession(id uuid.UUID, now time.Time, ttl time.Duration) *Session {
	s := &Session{
		ID:        id,
		Status:    StatusInProgress,
		Current:   Steps[0],
		Steps:     map[StepID]*StepState{},
		Draft:     Draft{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	for _, step := range Steps {
		s.Steps[step] = NewStepState(stepSpecs[step])
	}
	return s
}

// Step returns the state of a step.
func (s *Session) Step(step StepID) *StepState {
	return s.Steps[step]
}

// Expired reports whether the draft outlived its TTL.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone deep-copies the session through its JSON form, which is also how the
// stores persist it.
func (s *Session) Clone() (*Session, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out Session
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Record is the read-only copy of a completed draft handed to submission.
type Record struct {
	FormID      uuid.UUID `json:"form_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Fields      Draft     `json:"fields"`
}

// StepInvalidError is returned when "continue" is attempted on a step that
// does not validate.
type StepInvalidError struct {
	Step   StepID
	Errors fielderr.Errors
}

func (e *StepInvalidError) Error() string {
	return fmt.Sprintf("step %s has %d invalid field(s): %v", e.Step, len(e.Errors), e.Errors.Fields())
}

// ErrorFields exposes the per-field errors to the HTTP error envelope.
func (e *StepInvalidError) ErrorFields() any {
	return e.Errors
}
