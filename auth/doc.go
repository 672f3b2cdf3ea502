// Package auth guards the textops HTTP API with HS256 bearer tokens.
//
// JWTAuthenticator validates tokens signed with a shared secret and turns
// their claims into an Identity. Middleware rejects requests without a
// valid token and stores the Identity on the request context. Require then
// checks that Identity against an Authorizer for one action; ScopeAuthorizer
// admits an action when the token's scope claim names it.
package auth
