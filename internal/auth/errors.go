package auth

import "errors"

var (
	// ErrUnauthenticated is returned whenever a request cannot be tied to a
	// live user: missing or malformed Authorization header, invalid, expired
	// or badly signed token, deleted user, or a token whose email no longer
	// matches the user record. The cases are deliberately indistinguishable
	// so callers cannot probe which check failed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when an authenticated subject lacks the
	// permission (or ownership) an action requires.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned when the provided email and/or password
	// are not valid. It is the same error for an unknown email and a wrong
	// password, so login cannot be used as an account-existence oracle.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
