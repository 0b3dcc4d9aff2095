package auth

import "errors"

// Common errors returned by the auth package
var (
	// ErrInvalidToken is returned when a token fails signature or claims validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has passed its expiry
	ErrExpiredToken = errors.New("token has expired")

	// ErrExchangeFailed is returned when the identity provider rejects the
	// authorization code exchange
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrRevokeFailed is returned when the identity provider could not
	// revoke the presented token
	ErrRevokeFailed = errors.New("token revocation failed")
)
