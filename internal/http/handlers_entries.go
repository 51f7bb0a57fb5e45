package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"contable/internal/core"
)

type entryRequest struct {
	Tipo      string      `json:"tipo"`
	Concepto  string      `json:"concepto"`
	Categoria string      `json:"categoria"`
	Monto     json.Number `json:"monto"`
	Fecha     string      `json:"fecha"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	Tipo      string    `json:"tipo"`
	Concepto  string    `json:"concepto"`
	Categoria string    `json:"categoria"`
	Monto     float64   `json:"monto"`
	Fecha     string    `json:"fecha"`
	CreatedAt time.Time `json:"created_at"`
}

func entryToResponse(e core.Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Tipo:      string(e.Kind),
		Concepto:  e.Concept,
		Categoria: e.Category,
		Monto:     e.Amount.Soles(),
		Fecha:     e.Date.ISO(),
		CreatedAt: e.CreatedAt,
	}
}

// entryFromRequest validates and converts the payload. Amounts arrive as
// decimal soles and are stored as cents.
func entryFromRequest(req entryRequest, owner string) (core.Entry, string) {
	cents, err := core.ParseDecimalToCents(req.Monto.String())
	if err != nil {
		return core.Entry{}, "Monto inválido"
	}
	date, err := core.ParseDate(req.Fecha)
	if err != nil {
		return core.Entry{}, "Fecha inválida"
	}
	e := core.Entry{
		Owner:    owner,
		Kind:     core.Kind(req.Tipo),
		Concept:  sanitizeInput(req.Concepto),
		Category: sanitizeInput(req.Categoria),
		Amount:   core.Money{Cents: cents},
		Date:     date,
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, validationMessage(err)
	}
	return e, ""
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidKind):
		return "Tipo inválido: debe ser ingreso o gasto"
	case errors.Is(err, core.ErrInvalidPeriod):
		return "Periodicidad inválida"
	case errors.Is(err, core.ErrInvalidPriority):
		return "Prioridad inválida"
	case errors.Is(err, core.ErrEmptyConcept):
		return "El concepto es obligatorio"
	case errors.Is(err, core.ErrEmptyCategory):
		return "La categoría es obligatoria"
	case errors.Is(err, core.ErrEmptyTitle):
		return "El título es obligatorio"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Monto inválido"
	case errors.Is(err, core.ErrZeroDate):
		return "Fecha inválida"
	default:
		return "Datos inválidos"
	}
}

// ownsEntry verifies the id belongs to the caller before a write. IDs are
// unguessable UUIDs, but cross-owner writes must still be impossible.
func (s *Server) ownsEntry(r *http.Request, owner, id string) bool {
	entries, err := s.store.ListEntries(r.Context(), owner)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	entries, err := s.store.ListEntries(r.Context(), owner)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudieron cargar los movimientos")
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryToResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID

	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	e, msg := entryFromRequest(req, owner)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := s.store.CreateEntry(r.Context(), e)
	if err != nil {
		writeError(w, storeStatus(err), "No se pudo guardar el movimiento")
		return
	}
	e.ID = id

	s.reports.DeletePrefix(owner + ":")
	writeJSON(w, http.StatusCreated, entryToResponse(e))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	id := chi.URLParam(r, "id")

	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	e, msg := entryFromRequest(req, owner)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if !s.ownsEntry(r, owner, id) {
		writeError(w, http.StatusNotFound, "Movimiento no encontrado")
		return
	}
	if err := s.store.UpdateEntry(r.Context(), id, e); err != nil {
		writeError(w, storeStatus(err), "No se pudo actualizar el movimiento")
		return
	}
	e.ID = id

	s.reports.DeletePrefix(owner + ":")
	writeJSON(w, http.StatusOK, entryToResponse(e))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r).ID
	id := chi.URLParam(r, "id")

	if !s.ownsEntry(r, owner, id) {
		writeError(w, http.StatusNotFound, "Movimiento no encontrado")
		return
	}
	if err := s.store.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "No se pudo eliminar el movimiento")
		return
	}

	s.reports.DeletePrefix(owner + ":")
	w.WriteHeader(http.StatusNoContent)
}
