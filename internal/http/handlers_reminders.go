package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"contable/internal/core"
	"contable/internal/store"
)

type reminderRequest struct {
	Titulo           string      `json:"titulo"`
	Descripcion      string      `json:"descripcion"`
	Monto            json.Number `json:"monto"`
	FechaVencimiento string      `json:"fecha_vencimiento"`
	Periodicidad     string      `json:"periodicidad"`
	Prioridad        string      `json:"prioridad"`
}

type reminderResponse struct {
	ID               string    `json:"id"`
	Titulo           string    `json:"titulo"`
	Descripcion      string    `json:"descripcion"`
	Monto            float64   `json:"monto"`
	FechaVencimiento string    `json:"fecha_vencimiento"`
	Periodicidad     string    `json:"periodicidad"`
	Prioridad        string    `json:"prioridad"`
	Activo           bool      `json:"activo"`
	DiasRestantes    int       `json:"dias_restantes"`
	CreatedAt        time.Time `json:"created_at"`
}

func (s *Server) reminderToResponse(rem core.Reminder) reminderResponse {
	return reminderResponse{
		ID:               rem.ID,
		Titulo:           rem.Title,
		Descripcion:      rem.Description,
		Monto:            rem.Amount.Soles(),
		FechaVencimiento: rem.DueDate.ISO(),
		Periodicidad:     string(rem.Period),
		Prioridad:        string(rem.Priority),
		Activo:           rem.Active,
		DiasRestantes:    core.DaysUntil(rem.DueDate.Time, s.now()),
		CreatedAt:        rem.CreatedAt,
	}
}

func (s *Server) reminderFromRequest(req reminderRequest, owner string) (core.Reminder, string) {
	var cents int64
	if req.Monto != "" {
		var err error
		cents, err = core.ParseDecimalToCents(req.Monto.String())
		if err != nil {
			return core.Reminder{}, "Monto inválido"
		}
	}
	due, err := core.ParseDate(req.FechaVencimiento)
	if err != nil {
		return core.Reminder{}, "Fecha de vencimiento inválida"
	}
	rem := core.Reminder{
		Owner:       owner,
		Title:       sanitizeInput(req.Titulo),
		Description: sanitizeInput(req.Descripcion),
		Amount:      core.Money{Cents: cents},
		DueDate:     due,
		Period:      core.Period(req.Periodicidad),
		Priority:    core.Priority(req.Prioridad),
	}
	if err := rem.Validate(); err != nil {
		return core.Reminder{}, validationMessage(err)
	}
	return rem, ""
}

func (s *Server) ownsReminder(r *http.Request, owner, id string) bool {
	reminders, err := s.store.ListReminders(r.Context(), owner)
	if err != nil {
		return false
	}
	for _, rem := range reminders {
		if rem.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	reminders, err := s.store.ListReminders(r.Context(), owner)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los recordatorios")
		return
	}

	out := make([]reminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, s.reminderToResponse(rem))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID

	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	rem, msg := s.reminderFromRequest(req, owner)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := s.store.CreateReminder(r.Context(), rem)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudo guardar el recordatorio")
		return
	}
	rem.ID = id
	rem.Active = true

	// Opening the session here makes sure the new reminder is picked up by
	// the rollover loop right away.
	if s.sessions != nil {
		s.sessions.Get(owner)
	}

	writeJSON(w, http.StatusCreated, s.reminderToResponse(rem))
}

type reminderPatchRequest struct {
	FechaVencimiento *string `json:"fecha_vencimiento"`
	Activo           *bool   `json:"activo"`
}

func (s *Server) handlePatchReminder(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	id := chi.URLParam(r, "id")

	var req reminderPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	if req.FechaVencimiento == nil && req.Activo == nil {
		writeError(w, http.StatusBadRequest, "Nada que actualizar")
		return
	}

	var patch store.ReminderPatch
	if req.FechaVencimiento != nil {
		due, err := core.ParseDate(*req.FechaVencimiento)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Fecha de vencimiento inválida")
			return
		}
		patch.DueDate = &due
	}
	patch.Active = req.Activo

	if !s.ownsReminder(r, owner, id) {
		writeError(w, http.StatusNotFound, "Recordatorio no encontrado")
		return
	}
	if err := s.store.UpdateReminder(r.Context(), id, patch); err != nil {
		writeError(w, storeStatus(err), "No se pudo actualizar el recordatorio")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	id := chi.URLParam(r, "id")

	if !s.ownsReminder(r, owner, id) {
		writeError(w, http.StatusNotFound, "Recordatorio no encontrado")
		return
	}
	if err := s.store.DeleteReminder(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "No se pudo eliminar el recordatorio")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	count := 0
	if s.sessions != nil {
		count = s.sessions.Get(owner).BadgeCount()
	}
	writeJSON(w, http.StatusOK, map[string]int{"pendientes_hoy": count})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID

	var upcoming []core.Reminder
	if s.sessions != nil {
		upcoming = s.sessions.Get(owner).Upcoming()
	}

	out := make([]reminderResponse, 0, len(upcoming))
	for _, rem := range upcoming {
		out = append(out, s.reminderToResponse(rem))
	}
	writeJSON(w, http.StatusOK, out)
}
