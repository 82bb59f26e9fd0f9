package middleware

import (
	"context"
	"net/http"
	"strings"

	h "mojotix/internal/delivery/http/helpers"
	"mojotix/internal/domain"
)

type contextKey string

const requesterKey contextKey = "requester"

// SetRequester returns a context with the requester set. Used by auth middleware.
func SetRequester(ctx context.Context, req *domain.Requester) context.Context {
	return context.WithValue(ctx, requesterKey, req)
}

// RequesterFromContext returns the authenticated requester from the context,
// or nil when the request is unauthenticated.
func RequesterFromContext(ctx context.Context) *domain.Requester {
	req, _ := ctx.Value(requesterKey).(*domain.Requester)
	return req
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// requester in the request context. If the token is missing or invalid, it
// responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing or malformed authorization header")
				return
			}
			requester, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetRequester(r.Context(), requester)))
		}
	}
}

// OptionalAuth sets the requester when a valid Bearer token is present and
// passes the request through anonymously otherwise. Used on read endpoints
// whose results the access gate filters per requester.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if requester, err := verifier.Verify(token); err == nil {
					r = r.WithContext(SetRequester(r.Context(), requester))
				}
			}
			next(w, r)
		}
	}
}

// RequireAdmin wraps RequireAuth and additionally rejects non-admin
// requesters with 403.
func RequireAdmin(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	auth := RequireAuth(verifier)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return auth(func(w http.ResponseWriter, r *http.Request) {
			if !RequesterFromContext(r.Context()).IsAdmin() {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "admin role required")
				return
			}
			next(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}
