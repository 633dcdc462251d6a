package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"onboarding/internal/fielderr"
	"onboarding/internal/form/models"
)

// FieldValidator checks the plain (non-date, non-attachment) fields of a step.
type FieldValidator interface {
	ValidateFields(step models.StepID, fields map[string]string) []fielderr.FieldError
}

type personalFields struct {
	FullNameEnglish string `json:"fullNameEnglish" validate:"required,min=2,max=100,alphaspace"`
	FullNameNepali  string `json:"fullNameNepali" validate:"omitempty,max=100"`
	Gender          string `json:"gender" validate:"required,oneof=Male Female Other"`
}

type citizenshipFields struct {
	CitizenshipNumber string `json:"citizenshipNumber" validate:"required,max=30"`
	IssuedDistrict    string `json:"issuedDistrict" validate:"required,district"`
}

var alphaSpace = regexp.MustCompile(`^[A-Za-z\s]+$`)

// StructValidator is the FieldValidator backed by go-playground/validator
// struct tags.
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator registers the custom tags and reports field names by
// their JSON name.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpace.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("district", func(fl validator.FieldLevel) bool {
		return IsDistrict(fl.Field().String())
	})
	return &StructValidator{v: v}
}

func (s *StructValidator) ValidateFields(step models.StepID, fields map[string]string) []fielderr.FieldError {
	get := func(name string) string { return strings.TrimSpace(fields[name]) }

	var target any
	switch step {
	case models.StepPersonal:
		target = &personalFields{
			FullNameEnglish: get(models.FieldFullNameEnglish),
			FullNameNepali:  get(models.FieldFullNameNepali),
			Gender:          get(models.FieldGender),
		}
	case models.StepCitizenship:
		target = &citizenshipFields{
			CitizenshipNumber: get(models.FieldCitizenshipNumber),
			IssuedDistrict:    get(models.FieldIssuedDistrict),
		}
	default:
		return nil
	}

	err := s.v.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fielderr.FieldError{{Field: string(step), Kind: fielderr.InvalidFormat, Message: err.Error()}}
	}
	out := make([]fielderr.FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, fielderr.FieldError{
			Field:   e.Field(),
			Kind:    kindForTag(e.Tag()),
			Message: messageFor(e),
		})
	}
	return out
}

func kindForTag(tag string) fielderr.Kind {
	switch tag {
	case "required":
		return fielderr.Required
	case "oneof", "district":
		return fielderr.NotAllowed
	default:
		return fielderr.InvalidFormat
	}
}

var fieldMessages = map[string]map[string]string{
	models.FieldFullNameEnglish: {
		"required":   "Full name is required",
		"min":        "Full name is required",
		"alphaspace": "Only alphabets are allowed",
	},
	models.FieldGender: {
		"required": "Gender is required",
		"oneof":    "Gender must be Male, Female or Other",
	},
	models.FieldCitizenshipNumber: {
		"required": "Citizenship number is required",
	},
	models.FieldIssuedDistrict: {
		"required": "Issued district is required",
		"district": "Select a district from the list",
	},
}

func messageFor(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Field()][e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + e.Param() + " characters"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	default:
		return "Invalid value"
	}
}
