package handler

import (
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/service"
)

// GetBoard handles GET /board.
// Returns 503 until the first board has been mounted.
func (s *Server) GetBoard(w http.ResponseWriter, _ *http.Request) {
	s.writeBoard(w, http.StatusOK)
}

// writeBoard answers a command with the board it left behind.
func (s *Server) writeBoard(w http.ResponseWriter, status int) {
	b, ok := s.board.Board()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: ErrorDetail{Code: "board_unavailable", Message: "board is not mounted"}})
		return
	}
	writeJSON(w, status, b)
}

// GetTripInfo handles GET /trip-info.
func (s *Server) GetTripInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trips.TripInfo(r.Context()))
}

// GetDays handles GET /days.
func (s *Server) GetDays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trips.Days(r.Context()))
}

// SortBoard handles POST /sort?mode=event|time|price.
func (s *Server) SortBoard(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, false, "mode", r.URL.Query(), &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	mode, err := domain.ParseSortMode(raw)
	if err != nil {
		writeServiceError(w, r, err, "sort mode")
		return
	}
	if err := s.trips.Sort(r.Context(), mode); err != nil {
		writeServiceError(w, r, err, "board")
		return
	}
	s.writeBoard(w, http.StatusOK)
}

// TypeTotal is one bar of a per-type chart.
type TypeTotal struct {
	Type  domain.WaypointType `json:"type"`
	Value int                 `json:"value"`
}

// TypeMinutes is the time spent on one waypoint type.
type TypeMinutes struct {
	Type    domain.WaypointType `json:"type"`
	Minutes int64               `json:"minutes"`
}

// CityMinutes is the time spent in one city.
type CityMinutes struct {
	City    string `json:"city"`
	Minutes int64  `json:"minutes"`
}

// StatisticsResponse is the body of GET /statistics.
type StatisticsResponse struct {
	CostByType      []TypeTotal   `json:"cost_by_type"`
	CountByType     []TypeTotal   `json:"count_by_type"`
	TransportUsage  []TypeTotal   `json:"transport_usage"`
	TimeSpentByCity []CityMinutes `json:"time_spent_by_city"`
	TimeSpentByType []TypeMinutes `json:"time_spent_by_type"`
}

// GetStatistics handles GET /statistics.
func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statisticsToResponse(s.trips.Statistics(r.Context())))
}

func statisticsToResponse(st service.Statistics) StatisticsResponse {
	resp := StatisticsResponse{
		CostByType:      totalsToResponse(st.CostByType),
		CountByType:     totalsToResponse(st.CountByType),
		TransportUsage:  totalsToResponse(st.TransportUsage),
		TimeSpentByCity: make([]CityMinutes, 0, len(st.TimeSpentByCity)),
		TimeSpentByType: make([]TypeMinutes, 0, len(st.TimeSpentByType)),
	}
	for _, c := range st.TimeSpentByCity {
		resp.TimeSpentByCity = append(resp.TimeSpentByCity, CityMinutes{City: c.City, Minutes: int64(c.Duration / time.Minute)})
	}
	for _, t := range st.TimeSpentByType {
		resp.TimeSpentByType = append(resp.TimeSpentByType, TypeMinutes{Type: t.Type, Minutes: int64(t.Duration / time.Minute)})
	}
	return resp
}

func totalsToResponse(in []service.TypeTotal) []TypeTotal {
	out := make([]TypeTotal, 0, len(in))
	for _, t := range in {
		out = append(out, TypeTotal{Type: t.Type, Value: t.Value})
	}
	return out
}
