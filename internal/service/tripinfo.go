package service

import (
	"strings"
	"time"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// routeSeparator joins city names in the trip title.
const routeSeparator = " — "

// maxRouteCities is the longest route spelled out in full; longer routes
// show only the first and last city.
const maxRouteCities = 3

// BuildTripInfo summarises ws, which must be in chronological order.
// Consecutive waypoints in the same city count once in the route.
func BuildTripInfo(ws []domain.Waypoint) domain.TripInfo {
	if len(ws) == 0 {
		return domain.TripInfo{}
	}

	var (
		cities []string
		total  int
		end    time.Time
	)
	for _, w := range ws {
		if len(cities) == 0 || cities[len(cities)-1] != w.City {
			cities = append(cities, w.City)
		}
		total += w.TotalPrice()
		if w.EndTime.After(end) {
			end = w.EndTime
		}
	}
	if len(cities) > maxRouteCities {
		cities = []string{cities[0], "...", cities[len(cities)-1]}
	}

	start := ws[0].StartTime
	return domain.TripInfo{
		Route:     strings.Join(cities, routeSeparator),
		Start:     &start,
		End:       &end,
		TotalCost: total,
	}
}

// ApplyFilter returns the waypoints of ws selected by f relative to now.
// Future keeps waypoints starting after now; past keeps those that ended
// before now. Always returns a non-nil slice.
func ApplyFilter(ws []domain.Waypoint, f domain.Filter, now time.Time) []domain.Waypoint {
	out := make([]domain.Waypoint, 0, len(ws))
	for _, w := range ws {
		switch f {
		case domain.FilterFuture:
			if !w.StartTime.After(now) {
				continue
			}
		case domain.FilterPast:
			if !w.EndTime.Before(now) {
				continue
			}
		}
		out = append(out, w)
	}
	return out
}
