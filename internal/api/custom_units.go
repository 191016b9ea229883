package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edoardob90/runits/internal/audit"
	"github.com/edoardob90/runits/internal/customunit"
	"github.com/edoardob90/runits/internal/registry"
)

// CustomUnitRequest is the body of POST /custom-units: a definition plus an
// optional description. Posting an existing name redefines it.
type CustomUnitRequest struct {
	registry.CustomDefinition
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListCustomUnits(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.CustomUnits(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []customunit.CustomUnit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"custom_units": list,
		"count":        len(list),
	})
}

func (s *Server) handleDefineCustomUnit(w http.ResponseWriter, r *http.Request) {
	var req CustomUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	u := customunit.New(req.CustomDefinition)
	u.Description = req.Description
	if err := s.catalog.Define(audit.WithSource(r.Context(), audit.SourceAPI), u); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleDeleteCustomUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.catalog.Remove(audit.WithSource(r.Context(), audit.SourceAPI), name); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReload rebuilds the registry from all sources. On failure the
// previous registry stays published and the error is returned.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Reload(audit.WithSource(r.Context(), audit.SourceAPI)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "reloaded",
		"units":  s.catalog.Store().Load().Len(),
	})
}
