package validation

import (
	"regexp"
	"strings"

	"onboarding/internal/calendar"
	"onboarding/internal/datepair"
	"onboarding/internal/fielderr"
	"onboarding/internal/form/models"
)

// Rule is one named check. Check is pure and returns nil when the rule holds.
type Rule struct {
	Name  string
	Check func(State) []fielderr.FieldError
}

const (
	// MaxAttachmentSize is the largest accepted document, 2 MiB.
	MaxAttachmentSize = 2 << 20
	// AdultAge is the age above which male applicants must give a phone number.
	AdultAge = 18
)

var (
	phonePattern = regexp.MustCompile(`^9\d{9}$`)

	attachmentTypes = map[string]struct{}{
		"image/jpeg":      {},
		"image/png":       {},
		"application/pdf": {},
	}
)

func one(field string, kind fielderr.Kind, msg string) []fielderr.FieldError {
	return []fielderr.FieldError{{Field: field, Kind: kind, Message: msg}}
}

func fieldsRule(step models.StepID, fv FieldValidator) Rule {
	return Rule{
		Name: "fields",
		Check: func(s State) []fielderr.FieldError {
			return fv.ValidateFields(step, s.Fields)
		},
	}
}

// pairRule surfaces errors recorded by the synchronizer on either side.
func pairRule(pair string) Rule {
	return Rule{
		Name: pair + ".pair",
		Check: func(s State) []fielderr.FieldError {
			snap, ok := s.Dates[pair]
			if !ok {
				return nil
			}
			var out []fielderr.FieldError
			for _, side := range []datepair.Side{datepair.SideBS, datepair.SideAD} {
				if kind, bad := snap.Errors[side]; bad {
					out = append(out, fielderr.FieldError{
						Field:   snap.FieldName(side),
						Kind:    kind,
						Message: fielderr.MessageFor(kind),
					})
				}
			}
			return out
		},
	}
}

func pairRequiredRule(pair, label string) Rule {
	return Rule{
		Name: pair + ".required",
		Check: func(s State) []fielderr.FieldError {
			snap := s.Dates[pair]
			var out []fielderr.FieldError
			for _, side := range []datepair.Side{datepair.SideBS, datepair.SideAD} {
				if snap.Value(side).IsZero() && strings.TrimSpace(snap.Text(side)) == "" {
					out = append(out, fielderr.FieldError{
						Field:   pair + string(side),
						Kind:    fielderr.Required,
						Message: label + " (" + string(side) + ") is required",
					})
				}
			}
			return out
		},
	}
}

// notFutureRule rejects a date after today. The error lands on the side the
// user last typed into.
func notFutureRule(pair, label string) Rule {
	return Rule{
		Name: pair + ".not_future",
		Check: func(s State) []fielderr.FieldError {
			ad, ok := s.adValue(pair)
			if !ok || !calendar.FromTime(s.Today).Before(ad) {
				return nil
			}
			side := s.Dates[pair].LastEdited
			if side == datepair.SideNone {
				side = datepair.SideAD
			}
			return one(pair+string(side), fielderr.InvalidDate, label+" cannot be in the future")
		},
	}
}

var phoneFormatRule = Rule{
	Name: "phone.format",
	Check: func(s State) []fielderr.FieldError {
		phone := strings.TrimSpace(s.field(models.FieldPhone))
		if phone == "" || phonePattern.MatchString(phone) {
			return nil
		}
		return one(models.FieldPhone, fielderr.InvalidFormat, "Phone must start with 9 and be exactly 10 digits")
	},
}

var phoneRequiredRule = Rule{
	Name: "phone.required_for_adult_male",
	Check: func(s State) []fielderr.FieldError {
		age, ok := s.Age()
		if !ok || age <= AdultAge {
			return nil
		}
		if strings.TrimSpace(s.field(models.FieldGender)) != models.GenderMale {
			return nil
		}
		if strings.TrimSpace(s.field(models.FieldPhone)) != "" {
			return nil
		}
		return one(models.FieldPhone, fielderr.Required, "Phone is required for male above 18")
	},
}

func attachmentRule(field string) Rule {
	return Rule{
		Name: field + ".attachment",
		Check: func(s State) []fielderr.FieldError {
			a, ok := s.Attachments[field]
			if !ok || a.Name == "" || a.Size <= 0 {
				return one(field, fielderr.Required, "File is required")
			}
			if a.Size > MaxAttachmentSize {
				return one(field, fielderr.TooLarge, "File size must be less than 2MB")
			}
			if _, ok := attachmentTypes[a.ContentType]; !ok {
				return one(field, fielderr.UnsupportedType, "Only JPG, PNG, or PDF allowed")
			}
			return nil
		},
	}
}

// DefaultRules returns the ordered rule lists per step.
func DefaultRules(fv FieldValidator) map[models.StepID][]Rule {
	return map[models.StepID][]Rule{
		models.StepPersonal: {
			fieldsRule(models.StepPersonal, fv),
			pairRule(models.PairDOB),
			pairRequiredRule(models.PairDOB, "DOB"),
			notFutureRule(models.PairDOB, "Date of birth"),
			phoneFormatRule,
			phoneRequiredRule,
		},
		models.StepCitizenship: {
			fieldsRule(models.StepCitizenship, fv),
			pairRule(models.PairIssuedDate),
			pairRequiredRule(models.PairIssuedDate, "Issued date"),
			notFutureRule(models.PairIssuedDate, "Issued date"),
			attachmentRule(models.FieldFrontFile),
			attachmentRule(models.FieldBackFile),
		},
	}
}
