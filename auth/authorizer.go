package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonwraymond/textops/observe"
)

// Authorizer decides whether an identity may perform an action.
type Authorizer interface {
	// Authorize returns nil if permitted, or an error (typically *AuthzError)
	// if denied.
	Authorize(ctx context.Context, req *AuthzRequest) error
}

// AuthzRequest is the input to an authorization decision.
type AuthzRequest struct {
	Subject *Identity

	// Action is the operation class being requested, e.g. "render".
	Action string
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	Subject string
	Action  string
	Reason  string
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("auth: %q may not %s: %s", e.Subject, e.Action, e.Reason)
}

// Is reports whether target is ErrForbidden.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}

// ScopeAuthorizer permits an action when the identity holds a scope of the
// same name.
type ScopeAuthorizer struct{}

// Authorize checks req.Subject for the req.Action scope.
func (ScopeAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return &AuthzError{Action: req.Action, Reason: "no identity"}
	}
	if !req.Subject.HasScope(req.Action) {
		return &AuthzError{Subject: req.Subject.Subject, Action: req.Action, Reason: "missing scope"}
	}
	return nil
}

// Require returns middleware that admits a request only if authz permits
// action for the identity on its context. Denied requests get a 403 naming
// the missing scope.
func Require(authz Authorizer, action string, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			err := authz.Authorize(ctx, &AuthzRequest{Subject: IdentityFromContext(ctx), Action: action})
			if err != nil {
				logger.Warn(ctx, "request forbidden",
					observe.Field{Key: "subject", Value: SubjectFromContext(ctx)},
					observe.Field{Key: "action", Value: action},
					observe.Field{Key: "path", Value: r.URL.Path},
				)
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error="insufficient_scope", scope=%q`, action))
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
