package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidCredentials is returned by Login whenever the username is
	// unknown or the password does not match. Both cases collapse into one
	// error so responses cannot reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken indicates the presented token was never issued
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken indicates the session is past its expiry
	ErrExpiredToken = errors.New("session has expired")

	// ErrRevokedToken indicates the session was revoked by an earlier logout
	ErrRevokedToken = errors.New("session has been revoked")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)
