package handler

import (
	"errors"
	"net/http"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/editor"
)

// ChangeTypeRequest is the body of PUT /waypoints/{id}/editor/type.
type ChangeTypeRequest struct {
	Type domain.WaypointType `json:"type"`
}

// ChangeCityRequest is the body of PUT /waypoints/{id}/editor/city.
type ChangeCityRequest struct {
	City string `json:"city"`
}

// CardResponse is returned by the staging endpoints.
// CatalogMiss is true when the typed city has no catalog entry; the city is
// staged anyway and the save gate will reject it.
type CardResponse struct {
	Card        domain.Card `json:"card"`
	CatalogMiss bool        `json:"catalog_miss"`
}

// OpenEditor handles POST /waypoints/{id}/editor.
func (s *Server) OpenEditor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.OpenEditor(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	s.writeBoard(w, http.StatusOK)
}

// CancelEditor handles DELETE /waypoints/{id}/editor.
func (s *Server) CancelEditor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Cancel(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	s.writeBoard(w, http.StatusOK)
}

// Escape handles POST /editor/escape.
func (s *Server) Escape(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Escape(r.Context()); err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	s.writeBoard(w, http.StatusOK)
}

// ChangeType handles PUT /waypoints/{id}/editor/type.
func (s *Server) ChangeType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ChangeTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	card, err := s.trips.ChangeType(r.Context(), id, req.Type)
	if err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	writeJSON(w, http.StatusOK, CardResponse{Card: card})
}

// ChangeCity handles PUT /waypoints/{id}/editor/city.
func (s *Server) ChangeCity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ChangeCityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	card, err := s.trips.ChangeCity(r.Context(), id, req.City)
	if err != nil && !errors.Is(err, domain.ErrCatalogMiss) {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	writeJSON(w, http.StatusOK, CardResponse{Card: card, CatalogMiss: err != nil})
}

// SubmitEditor handles POST /waypoints/{id}/editor/submit.
// A valid form starts the save round trip and answers 202; the store changes
// when it completes.
func (s *Server) SubmitEditor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var f editor.Fields
	if err := decodeJSON(r, &f); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := s.trips.Submit(r.Context(), id, f); err != nil {
		writeServiceError(w, r, err, "waypoint")
		return
	}
	s.writeBoard(w, http.StatusAccepted)
}
