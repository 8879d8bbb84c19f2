package errors

import "fmt"

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nfe, ok := err.(*NotFoundError); ok {
		return nfe, true
	}
	return nil, false
}

// ConfigurationError reports a collaborator that was never configured,
// as opposed to one that was configured and then failed.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

func IsConfigurationError(err error) (*ConfigurationError, bool) {
	if ce, ok := err.(*ConfigurationError); ok {
		return ce, true
	}
	return nil, false
}

// UpstreamError wraps a failure returned by an external system
// (card processor, sales API).
type UpstreamError struct {
	Upstream string
	Message  string
	Cause    error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

func NewUpstreamError(upstream, message string, cause error) *UpstreamError {
	return &UpstreamError{
		Upstream: upstream,
		Message:  message,
		Cause:    cause,
	}
}

func IsUpstreamError(err error) (*UpstreamError, bool) {
	if ue, ok := err.(*UpstreamError); ok {
		return ue, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	if ie, ok := err.(*InternalError); ok {
		return ie, true
	}
	return nil, false
}
