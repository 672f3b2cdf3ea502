package auth

import (
	"slices"
	"time"
)

// Identity is the authenticated caller.
type Identity struct {
	// Subject is the sub claim.
	Subject string

	// Issuer is the iss claim.
	Issuer string

	// Scopes are the space separated entries of the scope claim.
	Scopes []string

	ExpiresAt time.Time
	IssuedAt  time.Time
}

// HasScope reports whether the identity was granted scope.
func (id *Identity) HasScope(scope string) bool {
	return id != nil && slices.Contains(id.Scopes, scope)
}

// AnonymousIdentity is the identity of every request to a server running
// without an authenticator. It holds no scopes.
func AnonymousIdentity() *Identity {
	return &Identity{Subject: "anonymous"}
}
