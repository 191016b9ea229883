package api

import (
	"net/http"
	"strconv"

	"github.com/edoardob90/runits/internal/audit"
)

// handleListAudit pages through the registry audit trail.
// Query parameters: action, unit, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	trail := s.catalog.Audit()
	if trail == nil {
		writeJSON(w, http.StatusOK, &audit.ListResult{Entries: []audit.Entry{}})
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action: q.Get("action"),
		Unit:   q.Get("unit"),
	}
	for param, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, param+" must be an integer")
			return
		}
		*dst = n
	}

	result, err := trail.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
