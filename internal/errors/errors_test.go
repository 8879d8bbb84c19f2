package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "outbox record 12 not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	nfe, ok := IsNotFoundError(NewNotFoundError("missing"))
	assert.True(t, ok)
	assert.Equal(t, "missing", nfe.Message)

	nfe, ok = IsNotFoundError(errors.New("some other error"))
	assert.False(t, ok)
	assert.Nil(t, nfe)
}

func TestValidationError_Creation(t *testing.T) {
	message := "Missing required fields"
	details := []ValidationDetail{
		{Field: "email", Message: "email is required"},
		{Field: "name", Message: "name is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestValidationError_IsValidationError(t *testing.T) {
	err := NewValidationError("Invalid amount")

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, "Invalid amount", ve.Message)

	ve, ok = IsValidationError(errors.New("plain"))
	assert.False(t, ok)
	assert.Nil(t, ve)
}

func TestConfigurationError_IsConfigurationError(t *testing.T) {
	var err error = NewConfigurationError("Stripe is not configured")

	ce, ok := IsConfigurationError(err)
	assert.True(t, ok)
	assert.Equal(t, "Stripe is not configured", ce.Error())

	_, ok = IsConfigurationError(NewValidationError("x"))
	assert.False(t, ok)
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("card_declined")
	err := NewUpstreamError("stripe", "Your card was declined.", cause)

	ue, ok := IsUpstreamError(err)
	assert.True(t, ok)
	assert.Equal(t, "stripe", ue.Upstream)
	assert.Equal(t, "Your card was declined.", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to save outbox record", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to save outbox record", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to save outbox record")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestInternalError_IsInternalError(t *testing.T) {
	ie, ok := IsInternalError(NewInternalError("inserting outbox record", errors.New("database is closed")))
	assert.True(t, ok)
	assert.Equal(t, "inserting outbox record", ie.Message)

	ie, ok = IsInternalError(NewValidationError("x"))
	assert.False(t, ok)
	assert.Nil(t, ie)
}
