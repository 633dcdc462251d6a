package fielderr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"onboarding/internal/calendar"
)

func TestErrorsFirstWins(t *testing.T) {
	e := Errors{}
	e.Add(FieldError{Field: "dobAD", Kind: InvalidDate})
	e.Add(FieldError{Field: "dobAD", Kind: Required})
	e.Add(FieldError{Field: "gender", Kind: Required})

	assert.Equal(t, InvalidDate, e["dobAD"].Kind)
	assert.Equal(t, []string{"dobAD", "gender"}, e.Fields())
	assert.Equal(t, map[string]Kind{"dobAD": InvalidDate, "gender": Required}, e.Kinds())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, OutOfRange, KindOf(fmt.Errorf("x: %w", calendar.ErrOutOfRange)))
	assert.Equal(t, InvalidDate, KindOf(calendar.ErrInvalidDate))
	assert.Equal(t, InvalidFormat, KindOf(calendar.ErrInvalidFormat))
	assert.Equal(t, InvalidFormat, KindOf(errors.New("anything else")))
}
