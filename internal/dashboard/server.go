package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sthimark/quakeboard/internal/filterstate"
)

// Server exposes the engine over a JSON HTTP API. View snapshots are read
// endpoints; filter mutations are POSTs that drive the state store and wait
// for the resulting view updates before answering, so a client re-reading a
// snapshot right after a mutation sees the new aggregation.
type Server struct {
	engine *Engine
	mux    *http.ServeMux
}

// NewServer builds the API around an engine.
func NewServer(engine *Engine) *Server {
	s := &Server{engine: engine, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /api/map", s.handleMap)
	s.mux.HandleFunc("GET /api/packing", s.handlePacking)
	s.mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	s.mux.HandleFunc("GET /api/taxonomy", s.handleTaxonomy)
	s.mux.HandleFunc("GET /api/regions", s.handleRegions)
	s.mux.HandleFunc("GET /api/state", s.handleState)

	s.mux.HandleFunc("POST /api/filters/toggle", s.handleToggle)
	s.mux.HandleFunc("POST /api/filters/select-all", s.handleSelectAll)
	s.mux.HandleFunc("POST /api/filters/clear", s.handleClear)
	s.mux.HandleFunc("POST /api/filters/time", s.handleTime)
	s.mux.HandleFunc("POST /api/filters/reset", s.handleReset)
	s.mux.HandleFunc("POST /api/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/region", s.handleRegionScope)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	counts := s.engine.Map.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"messages":     counts.Messages,
		"actors":       counts.Actors,
		"max_messages": counts.MaxMessages(),
		"max_actors":   counts.MaxActors(),
	})
}

func (s *Server) handlePacking(w http.ResponseWriter, r *http.Request) {
	// A nil forest serializes as null: the chart's "no data" signal.
	writeJSON(w, http.StatusOK, map[string]any{"children": s.engine.Pack.Forest()})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"series": s.engine.Stacked.Series(),
		"region": s.engine.Stacked.Region(),
	})
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Tax.Categories())
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Regions)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sel, window := s.engine.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": sel,
		"window":    window,
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Label    string `json:"label"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Category == "" || req.Label == "" {
		writeError(w, http.StatusBadRequest, "category and label are required")
		return
	}
	if err := s.engine.Store.ToggleSubcategory(req.Category, req.Label); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.engine.Store.Wait()
	s.handleState(w, r)
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.Store.SelectAll(req.Category); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.engine.Store.Wait()
	s.handleState(w, r)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.Store.ClearCategory(req.Category); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.engine.Store.Wait()
	s.handleState(w, r)
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Boundary string `json:"boundary"`
		Field    string `json:"field"`
		Value    string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	boundary := filterstate.Boundary(req.Boundary)
	if boundary != filterstate.BoundaryStart && boundary != filterstate.BoundaryEnd {
		writeError(w, http.StatusBadRequest, "boundary must be start or end")
		return
	}
	field := filterstate.Field(req.Field)
	if field != filterstate.FieldDate && field != filterstate.FieldHour && field != filterstate.FieldMinute {
		writeError(w, http.StatusBadRequest, "field must be date, hour, or minute")
		return
	}
	s.engine.Store.SetTimeComponent(boundary, field, req.Value)
	s.engine.Store.Wait()
	s.handleState(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Store.Reset()
	s.engine.Store.Wait()
	s.handleState(w, r)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.VectorSearch(req.Term); err != nil {
		if errors.Is(err, filterstate.ErrBlankSearchTerm) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.engine.Store.Wait()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegionScope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.ScopeRegion(r.Context(), req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "region": req.Name})
}
