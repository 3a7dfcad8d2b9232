package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// WaypointList is the body of GET /waypoints.
type WaypointList struct {
	Data       []domain.Waypoint `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// LoadRequest is the body of POST /waypoints/load.
type LoadRequest struct {
	Waypoints []domain.Waypoint `json:"waypoints"`
}

// ListWaypoints handles GET /waypoints.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100) and
// ?filter=everything|future|past.
func (s *Server) ListWaypoints(w http.ResponseWriter, r *http.Request) {
	var (
		page, limit *int
		rawFilter   string
	)
	q := r.URL.Query()
	for name, dest := range map[string]any{"page": &page, "limit": &limit, "filter": &rawFilter} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
			return
		}
	}
	filter, err := domain.ParseFilter(rawFilter)
	if err != nil {
		writeServiceError(w, r, err, "filter")
		return
	}

	params := domain.NewPaginationParams(page, limit)
	all := s.trips.List(r.Context(), filter)
	from := min(params.Offset(), len(all))
	to := min(from+params.Limit, len(all))

	writeJSON(w, http.StatusOK, WaypointList{
		Data: all[from:to],
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: len(all),
		},
	})
}

// GetWaypoint handles GET /waypoints/{id}.
func (s *Server) GetWaypoint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	wp, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	writeJSON(w, http.StatusOK, wp)
}

// LoadWaypoints handles POST /waypoints/load.
// Replaces the whole itinerary; nothing is stored when any waypoint fails
// validation.
func (s *Server) LoadWaypoints(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := s.trips.Load(r.Context(), req.Waypoints); err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	s.writeBoard(w, http.StatusOK)
}

// BeginCreate handles POST /waypoints/new and returns the pending card.
func (s *Server) BeginCreate(w http.ResponseWriter, r *http.Request) {
	card, err := s.trips.BeginCreate(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "destination")
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// DeleteWaypoint handles DELETE /waypoints/{id}.
// The waypoint leaves the store once the delete round trip completes.
func (s *Server) DeleteWaypoint(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	s.writeBoard(w, http.StatusAccepted)
}

// pathID binds the {id} path parameter. It writes a 400 and reports false
// when the parameter is missing.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return "", false
	}
	return id, true
}
