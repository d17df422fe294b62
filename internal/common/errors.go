package common

import "errors"

var (
	// ErrMalformedOrder is returned when a required field is absent or has the
	// wrong shape for the declared order type. Only the offending event is
	// dropped.
	ErrMalformedOrder = errors.New("malformed order")
	// ErrRejectedOrder is returned when a field is present but semantically
	// invalid. Only the offending event is dropped.
	ErrRejectedOrder = errors.New("order rejection")
	// ErrInvalidFill means a fill was larger than what the order holds. The
	// book can no longer be trusted once this is seen.
	ErrInvalidFill = errors.New("invalid fill")
)
