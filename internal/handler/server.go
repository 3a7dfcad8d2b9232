// Package handler implements the HTTP handlers for the itinerary API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, board.go, waypoint.go, editor.go, export.go) but share
// the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/editor"
	"github.com/pkordes/itinerary/backend/internal/service"
)

// TripServicer defines the itinerary operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without building the orchestrator.
type TripServicer interface {
	Load(ctx context.Context, ws []domain.Waypoint) error
	BeginCreate(ctx context.Context) (domain.Card, error)
	OpenEditor(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Escape(ctx context.Context) error
	ChangeType(ctx context.Context, id string, t domain.WaypointType) (domain.Card, error)
	ChangeCity(ctx context.Context, id string, city string) (domain.Card, error)
	Submit(ctx context.Context, id string, f editor.Fields) error
	Delete(ctx context.Context, id string) error
	Sort(ctx context.Context, mode domain.SortMode) error
	List(ctx context.Context, f domain.Filter) []domain.Waypoint
	GetByID(ctx context.Context, id string) (domain.Waypoint, error)
	Days(ctx context.Context) []domain.DayBucket
	TripInfo(ctx context.Context) domain.TripInfo
	Statistics(ctx context.Context) service.Statistics
}

// BoardSource returns the board currently mounted on the render surface.
type BoardSource interface {
	Board() (domain.Board, bool)
}

// Exporter produces the flat export table.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every handler.
type Server struct {
	trips  TripServicer
	board  BoardSource
	export Exporter
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, board BoardSource, export Exporter) *Server {
	return &Server{trips: trips, board: board, export: export}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Handler returns a chi router serving every endpoint of s.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()
	HandlerFromMux(s, r)
	return r
}

// HandlerFromMux registers every endpoint of s on r.
func HandlerFromMux(s *Server, r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/docs", s.GetDocs)

	r.Get("/board", s.GetBoard)
	r.Get("/trip-info", s.GetTripInfo)
	r.Get("/statistics", s.GetStatistics)
	r.Get("/days", s.GetDays)
	r.Post("/sort", s.SortBoard)
	r.Post("/editor/escape", s.Escape)
	r.Get("/export", s.GetExport)

	r.Route("/waypoints", func(r chi.Router) {
		r.Get("/", s.ListWaypoints)
		r.Post("/load", s.LoadWaypoints)
		r.Post("/new", s.BeginCreate)
		r.Get("/{id}", s.GetWaypoint)
		r.Delete("/{id}", s.DeleteWaypoint)

		r.Post("/{id}/editor", s.OpenEditor)
		r.Delete("/{id}/editor", s.CancelEditor)
		r.Put("/{id}/editor/type", s.ChangeType)
		r.Put("/{id}/editor/city", s.ChangeCity)
		r.Post("/{id}/editor/submit", s.SubmitEditor)
	})
}
