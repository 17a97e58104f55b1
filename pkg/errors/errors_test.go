package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	plain := CallNotActiveError("ended")
	assert.Equal(t, "CALL_NOT_ACTIVE: Call is no longer active (status: ended)", plain.Error())

	cause := errors.New("connection refused")
	wrapped := DatabaseError(cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, SelfCallError().StatusCode)
	assert.Equal(t, http.StatusConflict, CalleeUnreachableError().StatusCode)
	assert.Equal(t, http.StatusForbidden, NotParticipantError().StatusCode)
	assert.Equal(t, http.StatusConflict, RecipientOfflineError().StatusCode)
	assert.Equal(t, http.StatusUnauthorized, AuthRejectedError("expired").StatusCode)
	assert.Equal(t, http.StatusNotFound, CallNotFoundError().StatusCode)
}

func TestGetAppError(t *testing.T) {
	appErr := NotParticipantError()
	assert.Same(t, appErr, GetAppError(appErr))

	converted := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, converted.Code)
	assert.Equal(t, "boom", converted.Message)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(InvalidCallTransitionError("rejected", "accepted"), ErrCodeInvalidCallTransition))
	assert.False(t, HasCode(errors.New("boom"), ErrCodeInternal))
	assert.False(t, HasCode(nil, ErrCodeInternal))
}
