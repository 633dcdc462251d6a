package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeNotFound, "form not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeInvalidState, "already submitted"))
		assert.True(t, HasCode(err, CodeInvalidState))
		assert.Equal(t, CodeInvalidState, CodeOf(err))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("redis down")
	err := Wrap(cause, CodeInternal, "failed to load form")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal_error: failed to load form: redis down", err.Error())
}
