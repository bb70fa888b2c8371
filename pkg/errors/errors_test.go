package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrScheduleConflict, "double booked")
	assert.Equal(t, "double booked", cloned.Message)
	assert.Equal(t, "shift assignment double-books a slot", ErrScheduleConflict.Message)
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", cloned), ErrScheduleConflict))
	assert.False(t, errors.Is(cloned, ErrValidation))
}

func TestWithDetails(t *testing.T) {
	details := map[string][]string{"conflict_ids": {"a", "b"}}
	err := WithDetails(ErrScheduleConflict, "", details)
	assert.Equal(t, details, err.Details)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Nil(t, ErrScheduleConflict.Details)
}

func TestInvalidAndInternal(t *testing.T) {
	cause := fmt.Errorf("bad date")
	invalid := Invalid(cause, "invalid attendance query")
	assert.Equal(t, ErrValidation.Code, invalid.Code)
	assert.Equal(t, http.StatusBadRequest, invalid.Status)
	assert.ErrorIs(t, invalid, cause)

	internal := Internal(cause, "failed to load attendance")
	assert.Equal(t, ErrInternal.Code, internal.Code)
	assert.Equal(t, "failed to load attendance: bad date", internal.Error())
}
