package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Clone(ErrNotFound, "session not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "session not found", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestClonedErrorsMatchWithErrorsIs(t *testing.T) {
	clone := Clone(ErrConflict, "account already exists")
	assert.ErrorIs(t, clone, ErrConflict)
	assert.NotErrorIs(t, clone, ErrNotFound)
	assert.Equal(t, "conflict", ErrConflict.Message)
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause, "failed to load session")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load session: db down", err.Error())
}
