package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agendou/backend/internal/storage"
	"github.com/agendou/backend/libs/auth"
)

const (
	userTokenTTL  = 7 * 24 * time.Hour
	adminTokenTTL = 24 * time.Hour
)

type AuthHandler struct {
	users  *storage.UserRepository
	secret string
	logger *slog.Logger
}

func NewAuthHandler(users *storage.UserRepository, secret string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// LoginAdmin issues short-lived tokens and rejects non-admin accounts even
// with a correct password.
func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, adminOnly bool) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if adminOnly && !u.Admin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	ttl := userTokenTTL
	if adminOnly {
		ttl = adminTokenTTL
	}
	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:   u.ID,
		Email: u.Email,
		Admin: u.Admin,
		Iat:   now.Unix(),
		Exp:   now.Add(ttl).Unix(),
	}, h.secret)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: viewUser(u)})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": claims.Sub,
		"email":   claims.Email,
		"admin":   claims.Admin,
	})
}

// CheckToken answers 200 regardless; the body says whether the bearer token
// is usable. Frontends poll this without tripping auth error handling.
func (h *AuthHandler) CheckToken(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	claims, err := auth.ParseAndVerifyHS256(token, h.secret)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"email":         claims.Email,
		"admin":         claims.Admin,
	})
}
