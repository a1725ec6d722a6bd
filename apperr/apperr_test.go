package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("registering: %w", Conflict("email already taken"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "email already taken", Message(err))
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Empty(t, Message(errors.New("boom")))
}
