// Package auth authenticates requests by JWT and gates routes by permission
// group.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"imageBackend/internal/lib/api/response"
	"imageBackend/internal/lib/jwt"
	"imageBackend/internal/lib/logger/sl"
)

type ctxKey struct{}

// Tiers of the image API.
var (
	Readers = []string{jwt.GroupAdmin, jwt.GroupUser, jwt.GroupGuest}
	Writers = []string{jwt.GroupAdmin, jwt.GroupUser}
	Admins  = []string{jwt.GroupAdmin}
)

// New parses the token from the Authorization header or, failing that, from
// cookieName. Requests without a valid token pass through anonymous.
func New(log *slog.Logger, secret, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/auth"))

		fn := func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r, cookieName)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwt.Parse(raw, secret)
			if err != nil {
				log.Debug("rejected token", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireGroup answers 401 to anonymous requests and 403 to requests whose
// token carries none of groups.
func RequireGroup(groups ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			if !claims.InGroup(groups...) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("permission denied"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}

	return ""
}
