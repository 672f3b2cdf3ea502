package secret

import "errors"

var (
	// ErrMissingEnv indicates ${VAR} named an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrUnknownProvider indicates a reference named an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider not registered")

	// ErrNotFound indicates a provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmptyValue indicates a strict resolver received an empty secret.
	ErrEmptyValue = errors.New("secret: empty value")
)
