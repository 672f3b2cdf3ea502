package auth

import (
	"context"
	"net/http"
)

// Authenticator validates request credentials.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: a rejected credential is an AuthResult with Authenticated=false;
//     a non-nil error means the authenticator itself failed.
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header) (*AuthResult, error)
}

// AuthResult is the result of an authentication attempt.
type AuthResult struct {
	Authenticated bool
	Identity      *Identity
	Error         error
}

// AuthSuccess creates a successful authentication result.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{Authenticated: true, Identity: identity}
}

// AuthFailure creates a failed authentication result.
func AuthFailure(err error) *AuthResult {
	return &AuthResult{Error: err}
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, header http.Header) (*AuthResult, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, header http.Header) (*AuthResult, error) {
	return f(ctx, header)
}

// Anonymous accepts every request as AnonymousIdentity.
var Anonymous Authenticator = AuthenticatorFunc(func(context.Context, http.Header) (*AuthResult, error) {
	return AuthSuccess(AnonymousIdentity()), nil
})
