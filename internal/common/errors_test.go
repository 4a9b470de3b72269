package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "CERTTRACK_DB is required", ErrInvalidInput)

	assert.Equal(t, "CONFIG_ERROR: CERTTRACK_DB is required: invalid input", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)

	var appErr *AppError
	assert.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
}

func TestAppError_NoCause(t *testing.T) {
	err := NewAppError("NOT_FOUND", "no such record", nil)

	assert.Equal(t, "NOT_FOUND: no such record", err.Error())
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Nil(t, errors.Unwrap(err))
}
