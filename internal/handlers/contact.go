package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/agendou/backend/internal/mail"
)

const maxContactMessageLen = 300

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ContactHandler struct {
	mailer mail.Sender
	logger *slog.Logger
}

func NewContactHandler(mailer mail.Sender, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{mailer: mailer, logger: logger}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "name, email, subject and message are required")
		return
	}
	if !contactEmailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, "email is not valid")
		return
	}
	if len([]rune(req.Message)) > maxContactMessageLen {
		writeError(w, http.StatusBadRequest, "message must have at most 300 characters")
		return
	}

	if !h.mailer.Configured() {
		writeError(w, http.StatusServiceUnavailable, "contact form is temporarily unavailable")
		return
	}

	err := h.mailer.SendContact(r.Context(), mail.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.logger.Error("contact email failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "message sent"})
}
