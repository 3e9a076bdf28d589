package auth

import "errors"

var (
	// ErrInvalidEmail means the submitted address failed validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidCode covers wrong, expired and already-consumed codes.
	// The conditions are intentionally not distinguishable by callers.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrDeliveryFailed means the code was stored but could not be sent.
	ErrDeliveryFailed = errors.New("code delivery failed")

	// ErrInvalidToken covers tampered, malformed and expired session
	// tokens. The conditions are intentionally not distinguishable.
	ErrInvalidToken = errors.New("invalid session token")
)
