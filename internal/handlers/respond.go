package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agendou/backend/internal/availability"
	"github.com/agendou/backend/internal/booking"
	"github.com/agendou/backend/internal/lifecycle"
	"github.com/agendou/backend/internal/reminder"
	"github.com/agendou/backend/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError translates domain sentinels to HTTP statuses; anything
// unmapped is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, availability.ErrProfessionalBusy):
		writeError(w, http.StatusConflict, "professional already booked at this time")
	case errors.Is(err, availability.ErrSlotFull):
		writeError(w, http.StatusConflict, "no capacity left at this time")
	case errors.Is(err, availability.ErrDuplicateBookingSameDay):
		writeError(w, http.StatusConflict, "client already has an appointment on this date")
	case errors.Is(err, lifecycle.ErrAlreadyCancelled):
		writeError(w, http.StatusBadRequest, "appointment is already cancelled")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid status change")
	case errors.Is(err, lifecycle.ErrNotCompleted):
		writeError(w, http.StatusBadRequest, "appointment is not completed yet")
	case errors.Is(err, lifecycle.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, booking.ErrHasRating):
		writeError(w, http.StatusConflict, "appointment has a rating; remove it first")
	case errors.Is(err, reminder.ErrSweepInProgress):
		writeError(w, http.StatusConflict, "reminder sweep already running")
	case storage.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
