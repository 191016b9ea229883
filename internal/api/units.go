package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

// UnitInfo describes one registered unit.
type UnitInfo struct {
	Name       string   `json:"name"`
	Dimension  string   `json:"dimension"`
	Scale      float64  `json:"scale"`
	Offset     float64  `json:"offset,omitempty"`
	Functional bool     `json:"functional,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

// QuantityResponse is a quantity as returned by parse and convert.
type QuantityResponse struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Dimension string  `json:"dimension"`
	Text      string  `json:"text"`
}

// SystemInfo describes a unit system.
type SystemInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Active      bool               `json:"active"`
	BaseUnits   map[string]string  `json:"base_units"`
	Constants   map[string]float64 `json:"constants,omitempty"`
}

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	Expression string `json:"expression"`
}

// ConvertRequest is the body of POST /convert. At most one of Target and
// System may be set; with neither, the active system is used.
type ConvertRequest struct {
	Quantity string `json:"quantity"`
	Target   string `json:"target,omitempty"`
	System   string `json:"system,omitempty"`
}

// ConvertResponse pairs the parsed input with the converted result.
type ConvertResponse struct {
	Input  QuantityResponse `json:"input"`
	Result QuantityResponse `json:"result"`
}

func unitInfo(u units.Unit) UnitInfo {
	return UnitInfo{
		Name:       u.Name(),
		Dimension:  u.Dims().String(),
		Scale:      u.Scale(),
		Offset:     u.Offset(),
		Functional: u.IsFunctional(),
		Aliases:    u.Aliases(),
	}
}

func quantityResponse(q units.Quantity) QuantityResponse {
	return QuantityResponse{
		Value:     q.Value,
		Unit:      q.Unit.Name(),
		Dimension: q.Unit.Dims().String(),
		Text:      q.String(),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// handleListUnits lists every registered name. ?dimension= filters by the
// dimension description (length, length/time, ...).
func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	reg := s.catalog.Store().Load()
	if reg == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "registry not published")
		return
	}
	dimension := r.URL.Query().Get("dimension")

	list := make([]UnitInfo, 0, reg.Len())
	for _, name := range reg.ListUnits() {
		u, err := reg.Resolve(name)
		if err != nil {
			// Broken custom units are reported at load time.
			continue
		}
		info := unitInfo(u)
		info.Name = name
		if dimension != "" && info.Dimension != dimension {
			continue
		}
		list = append(list, info)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"units":   list,
		"aliases": reg.ListAliases(),
		"count":   len(list),
	})
}

func (s *Server) handleListPrefixes(w http.ResponseWriter, _ *http.Request) {
	reg := s.catalog.Store().Load()
	if reg == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "registry not published")
		return
	}
	prefixes := reg.ListPrefixes()
	writeJSON(w, http.StatusOK, map[string]any{
		"prefixes": prefixes,
		"count":    len(prefixes),
	})
}

func (s *Server) systemInfo(sys system.UnitSystem) SystemInfo {
	info := SystemInfo{
		Name:        sys.Name,
		Description: sys.Description,
		BaseUnits:   make(map[string]string, len(sys.BaseUnits)),
		Constants:   sys.Constants,
	}
	for d, u := range sys.BaseUnits {
		info.BaseUnits[d.String()] = u.Name()
	}
	if active, ok := s.catalog.Systems().Active(); ok {
		info.Active = strings.EqualFold(active.Name, sys.Name)
	}
	return info
}

func (s *Server) handleListSystems(w http.ResponseWriter, _ *http.Request) {
	manager := s.catalog.Systems()
	names := manager.List()

	list := make([]SystemInfo, 0, len(names))
	for _, name := range names {
		sys, err := manager.Get(name)
		if err != nil {
			continue
		}
		list = append(list, s.systemInfo(sys))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"systems": list,
		"count":   len(list),
	})
}

func (s *Server) handleGetSystem(w http.ResponseWriter, r *http.Request) {
	sys, err := s.catalog.Systems().Get(chi.URLParam(r, "name"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.systemInfo(sys))
}

// handleSwitchSystem makes the named system the target of system
// conversions that do not name one.
func (s *Server) handleSwitchSystem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeBadRequest(w, `body must be {"name": "<system>"}`)
		return
	}
	if err := s.catalog.Systems().Switch(req.Name); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	sys, _ := s.catalog.Systems().Active()
	s.logger.Info("active unit system switched", "system", sys.Name)
	writeJSON(w, http.StatusOK, s.systemInfo(sys))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Expression) == "" {
		writeBadRequest(w, "expression is required")
		return
	}

	q, err := s.catalog.Parser().Parse(req.Expression)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !finite(q.Value) {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeNonFinite, "value is not a finite number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quantity": quantityResponse(q),
		"unit":     unitInfo(q.Unit),
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Quantity) == "" {
		writeBadRequest(w, "quantity is required")
		return
	}
	if req.Target != "" && req.System != "" {
		writeBadRequest(w, "target and system are mutually exclusive")
		return
	}

	input, err := s.catalog.Parser().Parse(req.Quantity)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var result units.Quantity
	switch {
	case req.Target != "":
		result, err = s.engine.ConvertText(input, req.Target)
	case req.System != "":
		result, err = s.engine.ToSystem(input, req.System)
	default:
		result, err = s.engine.ToActiveSystem(input)
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !finite(result.Value) {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeNonFinite, "conversion result is not a finite number")
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		Input:  quantityResponse(input),
		Result: quantityResponse(result),
	})
}
