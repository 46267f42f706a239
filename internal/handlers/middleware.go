package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/agendou/backend/internal/lifecycle"
	"github.com/agendou/backend/libs/auth"
)

type claimsKey struct{}

// Auth guards routes with the HS256 bearer tokens issued at login.
type Auth struct {
	Secret string
}

func (a *Auth) authenticate(r *http.Request) (auth.Claims, bool, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Claims{}, false, nil
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return auth.Claims{}, true, auth.ErrInvalidToken
	}
	claims, err := auth.ParseAndVerifyHS256(token, a.Secret)
	if err != nil {
		return auth.Claims{}, true, err
	}
	return *claims, true, nil
}

// RequireUser rejects requests without a valid token. Missing credentials are
// 401; present but unusable ones are 403.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, present, err := a.authenticate(r)
		if !present {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if err != nil {
			writeError(w, http.StatusForbidden, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ClaimsFromContext(r.Context()).Admin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func ClaimsFromContext(ctx context.Context) auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(auth.Claims)
	return claims
}

func actorFromContext(ctx context.Context) lifecycle.Actor {
	claims := ClaimsFromContext(ctx)
	return lifecycle.Actor{Email: claims.Email, Admin: claims.Admin}
}
