package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agendou/backend/libs/auth"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, email string, admin bool, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:   "u-1",
		Email: email,
		Admin: admin,
		Iat:   now.Unix(),
		Exp:   now.Add(ttl).Unix(),
	}, testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"email": ClaimsFromContext(r.Context()).Email})
	})
}

func TestRequireUserMissingToken(t *testing.T) {
	mw := &Auth{Secret: testSecret}
	rec := httptest.NewRecorder()
	mw.RequireUser(claimsEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireUserInvalidToken(t *testing.T) {
	mw := &Auth{Secret: testSecret}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	mw.RequireUser(claimsEcho()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireUserExpiredToken(t *testing.T) {
	mw := &Auth{Secret: testSecret}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "a@b.com", false, -time.Hour))
	rec := httptest.NewRecorder()
	mw.RequireUser(claimsEcho()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireUserPassesClaims(t *testing.T) {
	mw := &Auth{Secret: testSecret}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "joana@x.com", false, time.Hour))
	rec := httptest.NewRecorder()

	var gotEmail string
	mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = ClaimsFromContext(r.Context()).Email
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if gotEmail != "joana@x.com" {
		t.Fatalf("claims email = %q", gotEmail)
	}
}

func TestRequireAdminRejectsRegularUser(t *testing.T) {
	mw := &Auth{Secret: testSecret}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "joana@x.com", false, time.Hour))
	rec := httptest.NewRecorder()
	mw.RequireAdmin(claimsEcho()).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	mw := &Auth{Secret: testSecret}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "admin@x.com", true, time.Hour))
	rec := httptest.NewRecorder()
	mw.RequireAdmin(claimsEcho()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
