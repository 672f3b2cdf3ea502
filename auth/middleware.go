package auth

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/textops/observe"
)

// Middleware authenticates every request with a. Rejected requests get a
// 401 JSON body; authenticator failures get a 500. On success the Identity
// is attached to the request context.
func Middleware(a Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			result, err := a.Authenticate(ctx, r.Header)
			if err != nil {
				logger.Error(ctx, "authenticator failed", observe.Field{Key: "error", Value: err})
				writeError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}
			if !result.Authenticated {
				reason := result.Error
				if reason == nil {
					reason = ErrInvalidCredentials
				}
				logger.Warn(ctx, "request rejected",
					observe.Field{Key: "path", Value: r.URL.Path},
					observe.Field{Key: "reason", Value: reason},
				)
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, reason.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
