package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")

	// ErrForbidden matches every *AuthzError.
	ErrForbidden = errors.New("auth: forbidden")

	// ErrMissingSecret indicates a JWT authenticator was built without a key.
	ErrMissingSecret = errors.New("auth: signing secret is required")
)
