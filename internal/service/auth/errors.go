package auth

import "errors"

// Common authentication service errors.
var (
	// ErrInvalidToken indicates the access token is malformed or its
	// signature doesn't match.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates an access token was presented where a
	// refresh token was expected, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token is malformed or
	// its signature doesn't match.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrRefreshTokenMismatch indicates the presented refresh token is
	// validly signed but is not the one currently stored for the user.
	// This is the replay signal for rotated-out tokens.
	ErrRefreshTokenMismatch = errors.New("refresh token does not match stored token")

	// ErrInvalidCredentials indicates an email/password pair that does not
	// identify a user. Deliberately indistinguishable between "no such
	// user" and "wrong password".
	ErrInvalidCredentials = errors.New("invalid email or password")
)
