package validation

import (
	"time"

	"onboarding/internal/calendar"
	"onboarding/internal/datepair"
	"onboarding/internal/form/models"
)

// State is everything a rule may look at. Rules are pure functions of it.
type State struct {
	Fields      map[string]string
	Dates       map[string]datepair.Snapshot
	Attachments map[string]models.Attachment
	// Today is "now" in the form's timezone.
	Today time.Time
}

// StateOf builds the validation state of one step.
func StateOf(st *models.StepState, today time.Time) State {
	return State{
		Fields:      st.Fields,
		Dates:       st.Snapshots(),
		Attachments: st.Attachments,
		Today:       today,
	}
}

func (s State) field(name string) string {
	return s.Fields[name]
}

// adValue returns the Gregorian day of a pair, converting from BS when only
// the BS side is present.
func (s State) adValue(pair string) (calendar.Date, bool) {
	snap, ok := s.Dates[pair]
	if !ok {
		return calendar.Date{}, false
	}
	if !snap.AD.IsZero() {
		return snap.AD, true
	}
	if snap.BS.IsZero() {
		return calendar.Date{}, false
	}
	ad, err := calendar.ToAD(snap.BS)
	if err != nil {
		return calendar.Date{}, false
	}
	return ad, true
}

// Age is the applicant's age derived from the date of birth. It is absent
// while no valid, non-future DOB is present.
func (s State) Age() (int, bool) {
	dob, ok := s.adValue(models.PairDOB)
	if !ok {
		return 0, false
	}
	if calendar.FromTime(s.Today).Before(dob) {
		return 0, false
	}
	return ComputeAge(dob.Time(), s.Today), true
}
