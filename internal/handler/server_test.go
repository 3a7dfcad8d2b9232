package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/editor"
	"github.com/pkordes/itinerary/backend/internal/handler"
	"github.com/pkordes/itinerary/backend/internal/service"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	load        func(ctx context.Context, ws []domain.Waypoint) error
	beginCreate func(ctx context.Context) (domain.Card, error)
	openEditor  func(ctx context.Context, id string) error
	cancel      func(ctx context.Context, id string) error
	escape      func(ctx context.Context) error
	changeType  func(ctx context.Context, id string, t domain.WaypointType) (domain.Card, error)
	changeCity  func(ctx context.Context, id string, city string) (domain.Card, error)
	submit      func(ctx context.Context, id string, f editor.Fields) error
	delete      func(ctx context.Context, id string) error
	sort        func(ctx context.Context, mode domain.SortMode) error
	list        func(ctx context.Context, f domain.Filter) []domain.Waypoint
	getByID     func(ctx context.Context, id string) (domain.Waypoint, error)
	days        func(ctx context.Context) []domain.DayBucket
	tripInfo    func(ctx context.Context) domain.TripInfo
	statistics  func(ctx context.Context) service.Statistics
}

func (m *mockTripServicer) Load(ctx context.Context, ws []domain.Waypoint) error {
	return m.load(ctx, ws)
}
func (m *mockTripServicer) BeginCreate(ctx context.Context) (domain.Card, error) {
	return m.beginCreate(ctx)
}
func (m *mockTripServicer) OpenEditor(ctx context.Context, id string) error {
	return m.openEditor(ctx, id)
}
func (m *mockTripServicer) Cancel(ctx context.Context, id string) error {
	return m.cancel(ctx, id)
}
func (m *mockTripServicer) Escape(ctx context.Context) error {
	return m.escape(ctx)
}
func (m *mockTripServicer) ChangeType(ctx context.Context, id string, t domain.WaypointType) (domain.Card, error) {
	return m.changeType(ctx, id, t)
}
func (m *mockTripServicer) ChangeCity(ctx context.Context, id string, city string) (domain.Card, error) {
	return m.changeCity(ctx, id, city)
}
func (m *mockTripServicer) Submit(ctx context.Context, id string, f editor.Fields) error {
	return m.submit(ctx, id, f)
}
func (m *mockTripServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) Sort(ctx context.Context, mode domain.SortMode) error {
	return m.sort(ctx, mode)
}
func (m *mockTripServicer) List(ctx context.Context, f domain.Filter) []domain.Waypoint {
	return m.list(ctx, f)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id string) (domain.Waypoint, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) Days(ctx context.Context) []domain.DayBucket {
	return m.days(ctx)
}
func (m *mockTripServicer) TripInfo(ctx context.Context) domain.TripInfo {
	return m.tripInfo(ctx)
}
func (m *mockTripServicer) Statistics(ctx context.Context) service.Statistics {
	return m.statistics(ctx)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// compile-time check: the production orchestrator satisfies the interface too.
var _ handler.TripServicer = (*service.TripService)(nil)

// stubBoard is a handler.BoardSource returning a fixed board.
type stubBoard struct {
	board   domain.Board
	mounted bool
}

func (s stubBoard) Board() (domain.Board, bool) { return s.board, s.mounted }

// mockExporter is a test double for handler.Exporter.
type mockExporter struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExporter) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.Exporter = (*mockExporter)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.TripServicer) http.Handler {
	return newHTTPHandlerWith(svc, mountedBoard(), nil)
}

func newHTTPHandlerWith(svc handler.TripServicer, board handler.BoardSource, exp handler.Exporter) http.Handler {
	return handler.Handler(handler.NewServer(svc, board, exp))
}

func mountedBoard() stubBoard {
	return stubBoard{mounted: true, board: domain.Board{Mode: domain.SortEvent, Days: []domain.BoardDay{}, Empty: true}}
}

func waypointFixture() domain.Waypoint {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return domain.Waypoint{
		ID:        "wp-1",
		Type:      domain.TypeFlight,
		City:      "Geneva",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Price:     300,
		Offers:    []domain.Offer{{Title: "Add luggage", Price: 30, Selected: true}},
		Photos:    []domain.Photo{},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
