package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrContactNotFound   = errors.New("contact not found")
	ErrStoreNotConnected = errors.New("store not connected")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrStaleState        = errors.New("billing state changed concurrently")
)

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// GatewayError wraps a failure reported by the payment gateway.
// Temporary is set for network failures and 5xx responses.
type GatewayError struct {
	Op        string
	Message   string
	Temporary bool
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
