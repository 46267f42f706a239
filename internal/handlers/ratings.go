package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/agendou/backend/internal/lifecycle"
	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/internal/storage"
)

type RatingHandler struct {
	ratings *storage.RatingRepository
	appts   *storage.AppointmentRepository
	logger  *slog.Logger
}

func NewRatingHandler(ratings *storage.RatingRepository, appts *storage.AppointmentRepository, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{ratings: ratings, appts: appts, logger: logger}
}

type ratingView struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointment_id"`
	Score         int    `json:"score"`
	Comment       string `json:"comment,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type ratedAppointmentView struct {
	ratingView
	Appointment appointmentView `json:"appointment"`
}

func viewRating(rating model.Rating) ratingView {
	return ratingView{
		ID:            rating.ID,
		AppointmentID: rating.AppointmentID,
		Score:         rating.Score,
		Comment:       rating.Comment,
		CreatedAt:     rating.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createRatingRequest struct {
	AppointmentID string `json:"appointment_id"`
	Score         int    `json:"score"`
	Comment       string `json:"comment"`
}

func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.AppointmentID == "" {
		writeError(w, http.StatusBadRequest, "appointment_id is required")
		return
	}
	if req.Score < 1 || req.Score > 5 {
		writeError(w, http.StatusBadRequest, "score must be between 1 and 5")
		return
	}

	appt, err := h.appts.GetByID(r.Context(), req.AppointmentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := lifecycle.CanRate(appt, actorFromContext(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}

	rating := model.Rating{
		AppointmentID: req.AppointmentID,
		Score:         req.Score,
		Comment:       req.Comment,
	}
	if err := h.ratings.Create(r.Context(), &rating); err != nil {
		// Unique index on appointment_id; one rating per appointment.
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "appointment already rated")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewRating(rating))
}

func (h *RatingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.ratings.ListByOwnerEmail(r.Context(), ClaimsFromContext(r.Context()).Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRatedAppointments(items))
}

func (h *RatingHandler) GetByAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.appts.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	actor := actorFromContext(r.Context())
	if !actor.Admin && !actor.Owns(appt) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	rating, err := h.ratings.GetByAppointment(r.Context(), appt.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRating(rating))
}

type updateRatingRequest struct {
	Score   *int    `json:"score"`
	Comment *string `json:"comment"`
}

func (h *RatingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Score != nil && (*req.Score < 1 || *req.Score > 5) {
		writeError(w, http.StatusBadRequest, "score must be between 1 and 5")
		return
	}

	if !h.authorizeRatingAccess(w, r) {
		return
	}
	rating, err := h.ratings.Update(r.Context(), r.PathValue("id"), req.Score, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRating(rating))
}

func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeRatingAccess(w, r) {
		return
	}
	if err := h.ratings.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "rating deleted"})
}

func (h *RatingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.ratings.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRatedAppointments(items))
}

func (h *RatingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ratings.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// authorizeRatingAccess loads the rating in the path and checks the caller
// owns its appointment (or is an admin). Writes the error response itself.
func (h *RatingHandler) authorizeRatingAccess(w http.ResponseWriter, r *http.Request) bool {
	rating, err := h.ratings.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	actor := actorFromContext(r.Context())
	if actor.Admin {
		return true
	}
	appt, err := h.appts.GetByID(r.Context(), rating.AppointmentID)
	if err != nil {
		writeDomainError(w, err)
		return false
	}
	if !actor.Owns(appt) {
		writeError(w, http.StatusForbidden, "not allowed")
		return false
	}
	return true
}

func viewRatedAppointments(items []storage.RatedAppointment) []ratedAppointmentView {
	out := make([]ratedAppointmentView, 0, len(items))
	for _, item := range items {
		out = append(out, ratedAppointmentView{
			ratingView:  viewRating(item.Rating),
			Appointment: viewAppointment(item.Appointment),
		})
	}
	return out
}
