package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/agendou/backend/internal/booking"
	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/internal/reminder"
	"github.com/agendou/backend/internal/storage"
)

type AppointmentHandler struct {
	svc     *booking.Service
	repo    *storage.AppointmentRepository
	sweeper *reminder.Sweeper
	logger  *slog.Logger
}

func NewAppointmentHandler(svc *booking.Service, repo *storage.AppointmentRepository, sweeper *reminder.Sweeper, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, repo: repo, sweeper: sweeper, logger: logger}
}

type appointmentView struct {
	ID             string `json:"id"`
	Service        string `json:"service"`
	Professional   string `json:"professional"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	ClientName     string `json:"client_name"`
	ContactEmail   string `json:"contact_email,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	Status         string `json:"status"`
	Notes          string `json:"notes,omitempty"`
	ReminderSentAt string `json:"reminder_sent_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func viewAppointment(appt model.Appointment) appointmentView {
	v := appointmentView{
		ID:           appt.ID,
		Service:      appt.Service,
		Professional: appt.Professional,
		Date:         appt.Date,
		Time:         appt.Time,
		ClientName:   appt.ClientName,
		ContactEmail: appt.ContactEmail,
		ContactPhone: appt.ContactPhone,
		Status:       appt.Status,
		Notes:        appt.Notes,
		CreatedAt:    appt.CreatedAt.UTC().Format(time.RFC3339),
	}
	if appt.ReminderSentAt != nil {
		v.ReminderSentAt = appt.ReminderSentAt.UTC().Format(time.RFC3339)
	}
	return v
}

func viewAppointments(appts []model.Appointment) []appointmentView {
	out := make([]appointmentView, 0, len(appts))
	for _, appt := range appts {
		out = append(out, viewAppointment(appt))
	}
	return out
}

type createAppointmentRequest struct {
	Service      string `json:"service"`
	Professional string `json:"professional"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	ClientName   string `json:"client_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Notes        string `json:"notes"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	appt, err := h.svc.Create(r.Context(), booking.CreateInput{
		Service:      req.Service,
		Professional: req.Professional,
		Date:         req.Date,
		Time:         req.Time,
		ClientName:   req.ClientName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewAppointment(appt))
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "err", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAppointments(appts))
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	actor := actorFromContext(r.Context())
	if !actor.Admin && !actor.Owns(appt) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}
	writeJSON(w, http.StatusOK, viewAppointment(appt))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	appt, err := h.svc.SetStatus(r.Context(), r.PathValue("id"), req.Status, actorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAppointment(appt))
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	appt, err := h.svc.Cancel(r.Context(), r.PathValue("id"), actorFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAppointment(appt))
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}

// SendReminders triggers a sweep outside the hourly schedule. A sweep that
// could not even list candidates still answers with its summary so the admin
// sees success=false and the error.
func (h *AppointmentHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sweeper.Sweep(r.Context(), time.Now())
	if err != nil {
		if errors.Is(err, reminder.ErrSweepInProgress) {
			writeDomainError(w, err)
			return
		}
		h.logger.Error("manual reminder sweep failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
