package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/datepair"
	"onboarding/internal/fielderr"
)

func TestStepNavigation(t *testing.T) {
	assert.Equal(t, StepCitizenship, StepPersonal.Next())
	assert.Equal(t, StepReview, StepCitizenship.Next())
	assert.Equal(t, StepID(""), StepReview.Next())
	assert.Equal(t, StepID(""), StepPersonal.Prev())
	assert.Equal(t, StepCitizenship, StepReview.Prev())

	step, err := ParseStep("citizenship")
	require.NoError(t, err)
	assert.Equal(t, StepCitizenship, step)
	_, err = ParseStep("address")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	spec, ok := SpecFor(StepCitizenship)
	require.True(t, ok)

	tests := []struct {
		field string
		kind  FieldKind
		pair  string
		side  datepair.Side
	}{
		{FieldIssuedDistrict, FieldPlain, "", datepair.SideNone},
		{"issuedDateBS", FieldDate, PairIssuedDate, datepair.SideBS},
		{"issuedDateAD", FieldDate, PairIssuedDate, datepair.SideAD},
		{FieldFrontFile, FieldAttachment, "", datepair.SideNone},
		{"dobBS", FieldUnknown, "", datepair.SideNone},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			kind, pair, side := spec.Classify(tt.field)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.pair, pair)
			assert.Equal(t, tt.side, side)
		})
	}
}

func TestStepStateValues(t *testing.T) {
	spec, _ := SpecFor(StepCitizenship)
	st := NewStepState(spec)
	st.Fields[FieldIssuedDistrict] = "Kaski"
	datepair.New(st.Pairs[PairIssuedDate]).OnFieldEdited(datepair.SideAD, "2018-08-27")
	st.Attachments[FieldFrontFile] = Attachment{Name: "front.pdf", ContentType: "application/pdf", Size: 2048}

	got := st.Values()

	assert.Equal(t, Draft{
		FieldIssuedDistrict:            "Kaski",
		"issuedDateAD":                 "2018-08-27",
		"issuedDateBS":                 "2075-05-11",
		FieldFrontFile:                 "front.pdf",
		FieldFrontFile + "ContentType": "application/pdf",
		FieldFrontFile + "Size":        "2048",
	}, got)
}

func TestSessionClone(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	s := NewSession(uuid.New(), now, time.Hour)
	datepair.New(s.Step(StepPersonal).Pairs[PairDOB]).OnFieldEdited(datepair.SideBS, "2080-01-15")
	s.Step(StepPersonal).Errors.Add(fielderr.FieldError{Field: FieldGender, Kind: fielderr.Required})
	s.Draft[FieldGender] = "Other"

	c, err := s.Clone()
	require.NoError(t, err)

	assert.Equal(t, "2023-04-28", c.Step(StepPersonal).Pairs[PairDOB].Text(datepair.SideAD))
	assert.True(t, c.Step(StepPersonal).Errors.Has(FieldGender))

	c.Draft[FieldGender] = "Male"
	assert.Equal(t, "Other", s.Draft[FieldGender], "clone must not share the draft")
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	s := NewSession(uuid.New(), now, time.Hour)

	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}

func TestStepInvalidError(t *testing.T) {
	errs := fielderr.Errors{}
	errs.Add(fielderr.FieldError{Field: FieldPhone, Kind: fielderr.Required})
	err := &StepInvalidError{Step: StepPersonal, Errors: errs}

	assert.Contains(t, err.Error(), "phone")
	assert.Equal(t, errs, err.ErrorFields())
}
