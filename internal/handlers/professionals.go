package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/internal/storage"
)

type ProfessionalHandler struct {
	pros   *storage.ProfessionalRepository
	appts  *storage.AppointmentRepository
	logger *slog.Logger
}

func NewProfessionalHandler(pros *storage.ProfessionalRepository, appts *storage.AppointmentRepository, logger *slog.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{pros: pros, appts: appts, logger: logger}
}

type professionalView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	Photo     string `json:"photo,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// publicProfessionalView omits internal fields for the unauthenticated list.
type publicProfessionalView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	Photo     string `json:"photo,omitempty"`
}

func viewProfessional(p model.Professional) professionalView {
	return professionalView{
		ID:        p.ID,
		Name:      p.Name,
		Specialty: p.Specialty,
		Photo:     p.Photo,
		Active:    p.Active,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ProfessionalHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	pros, err := h.pros.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]publicProfessionalView, 0, len(pros))
	for _, p := range pros {
		out = append(out, publicProfessionalView{ID: p.ID, Name: p.Name, Specialty: p.Specialty, Photo: p.Photo})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProfessionalHandler) List(w http.ResponseWriter, r *http.Request) {
	pros, err := h.pros.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]professionalView, 0, len(pros))
	for _, p := range pros {
		out = append(out, viewProfessional(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type createProfessionalRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Photo     string `json:"photo"`
}

func (h *ProfessionalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProfessionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if _, err := h.pros.GetByNameInsensitive(r.Context(), req.Name, ""); err == nil {
		writeError(w, http.StatusConflict, "a professional with this name already exists")
		return
	} else if !storage.IsNotFound(err) {
		writeDomainError(w, err)
		return
	}

	p := model.Professional{
		Name:      req.Name,
		Specialty: strings.TrimSpace(req.Specialty),
		Photo:     strings.TrimSpace(req.Photo),
		Active:    true,
	}
	if err := h.pros.Create(r.Context(), &p); err != nil {
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "a professional with this name already exists")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewProfessional(p))
}

func (h *ProfessionalHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.pros.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfessional(p))
}

type updateProfessionalRequest struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
	Photo     *string `json:"photo"`
}

func (h *ProfessionalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfessionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	id := r.PathValue("id")

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		req.Name = &name
		if _, err := h.pros.GetByNameInsensitive(r.Context(), name, id); err == nil {
			writeError(w, http.StatusConflict, "a professional with this name already exists")
			return
		} else if !storage.IsNotFound(err) {
			writeDomainError(w, err)
			return
		}
	}

	p, err := h.pros.Update(r.Context(), id, req.Name, req.Specialty, req.Photo)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "a professional with this name already exists")
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfessional(p))
}

// Delete refuses while the professional still has upcoming active
// appointments; the admin should toggle-status instead.
func (h *ProfessionalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.pros.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	today := time.Now().Format("2006-01-02")
	busy, err := h.appts.HasFutureActive(r.Context(), p.Name, today)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if busy {
		writeError(w, http.StatusConflict, "professional has upcoming appointments; deactivate instead")
		return
	}

	if err := h.pros.Delete(r.Context(), p.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "professional deleted"})
}

func (h *ProfessionalHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	p, err := h.pros.ToggleActive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewProfessional(p))
}

func (h *ProfessionalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pros.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ProfessionalHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	p, err := h.pros.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	appts, err := h.appts.ListByProfessional(r.Context(), p.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAppointments(appts))
}
