package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edoardob90/runits/internal/catalog"
	"github.com/edoardob90/runits/internal/customunit"
	"github.com/edoardob90/runits/internal/definitions"
	"github.com/edoardob90/runits/internal/registry"
	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes. Conversion failures use the units error codes
// (unknown_unit, incompatible_dimensions, ...) directly.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeUnavailable     = "unavailable"
	ErrCodeMissingBaseUnit = system.CodeMissingBaseUnit
	ErrCodeNonFinite       = "non_finite_result"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps err to a status and code. Unclassified errors are
// logged and answered with a generic 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, customunit.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, customunit.ErrExists),
		errors.Is(err, registry.ErrDuplicateName),
		errors.Is(err, catalog.ErrInUse):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, customunit.ErrInvalid),
		errors.Is(err, registry.ErrInvalidRecord),
		errors.Is(err, system.ErrInvalidSystem):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, definitions.ErrInvalidFile):
		return http.StatusUnprocessableEntity, ErrCodeValidation
	case errors.Is(err, catalog.ErrNoRepository), errors.Is(err, registry.ErrNotPublished):
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	case errors.Is(err, system.ErrMissingBaseUnit):
		return http.StatusUnprocessableEntity, ErrCodeMissingBaseUnit
	}

	code := units.Code(err)
	switch code {
	case "syntax_error", "unknown_unit", "ambiguous_unit", "unknown_dimension":
		return http.StatusBadRequest, code
	case "system_not_found":
		return http.StatusNotFound, code
	case "internal_error":
		return http.StatusInternalServerError, ErrCodeInternal
	default:
		return http.StatusUnprocessableEntity, code
	}
}
