package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/internal/outbox"
	"github.com/agendou/backend/internal/storage"
)

const bcryptCost = 12

type UserHandler struct {
	users  *storage.UserRepository
	outbox *outbox.Repository
	logger *slog.Logger
}

func NewUserHandler(users *storage.UserRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, outbox: outboxRepo, logger: logger}
}

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CPF       string `json:"cpf,omitempty"`
	Admin     bool   `json:"admin"`
	CreatedAt string `json:"created_at"`
}

func viewUser(u model.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CPF:       u.CPF,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	CPF      string `json:"cpf"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, false)
}

// RegisterFirstAdmin bootstraps the very first admin account. Once any admin
// exists the endpoint is closed.
func (h *UserHandler) RegisterFirstAdmin(w http.ResponseWriter, r *http.Request) {
	n, err := h.users.CountAdmins(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if n > 0 {
		writeError(w, http.StatusForbidden, "an admin account already exists")
		return
	}
	h.register(w, r, true)
}

func (h *UserHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, true)
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request, admin bool) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "email is not valid")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must have at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	u := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		CPF:          strings.TrimSpace(req.CPF),
		Admin:        admin,
	}
	if err := h.users.Create(r.Context(), &u); err != nil {
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeDomainError(w, err)
		return
	}

	if err := h.outbox.InsertStandalone(r.Context(), outbox.UserCreated(u)); err != nil {
		h.logger.Error("failed to record user created event", "user_id", u.ID, "err", err)
	}

	writeJSON(w, http.StatusCreated, viewUser(u))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, viewUser(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if u.Admin {
		n, err := h.users.CountAdmins(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if n <= 1 {
			writeError(w, http.StatusConflict, "cannot delete the last admin account")
			return
		}
	}
	if err := h.users.Delete(r.Context(), u.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
