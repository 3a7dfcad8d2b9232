package service

import (
	"time"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// TypeTotal is one bar of a per-type chart.
type TypeTotal struct {
	Type  domain.WaypointType
	Value int
}

// TypeDuration is the total time spent on one waypoint type.
type TypeDuration struct {
	Type     domain.WaypointType
	Duration time.Duration
}

// CityDuration is the total time spent in one city.
type CityDuration struct {
	City     string
	Duration time.Duration
}

// Statistics bundles every aggregate shown on the statistics screen.
type Statistics struct {
	CostByType      []TypeTotal
	CountByType     []TypeTotal
	TransportUsage  []TypeTotal
	TimeSpentByCity []CityDuration
	TimeSpentByType []TypeDuration
}

// ComputeStatistics runs every aggregate over ws. Nothing is cached.
func ComputeStatistics(ws []domain.Waypoint) Statistics {
	return Statistics{
		CostByType:      CostByType(ws),
		CountByType:     CountByType(ws),
		TransportUsage:  TransportUsage(ws),
		TimeSpentByCity: TimeSpentByCity(ws),
		TimeSpentByType: TimeSpentByType(ws),
	}
}

// CostByType sums base prices per type in domain.WaypointTypes order.
// Types with a zero total are omitted.
func CostByType(ws []domain.Waypoint) []TypeTotal {
	return perType(ws, func(w domain.Waypoint) int { return w.Price }, func(domain.WaypointType) bool { return true })
}

// CountByType counts waypoints per type. Types with no waypoints are omitted.
func CountByType(ws []domain.Waypoint) []TypeTotal {
	return perType(ws, func(domain.Waypoint) int { return 1 }, func(domain.WaypointType) bool { return true })
}

// TransportUsage is CountByType restricted to transport types.
func TransportUsage(ws []domain.Waypoint) []TypeTotal {
	return perType(ws, func(domain.Waypoint) int { return 1 }, domain.WaypointType.IsTransport)
}

// TimeSpentByCity sums durations per city, cities in order of first appearance.
func TimeSpentByCity(ws []domain.Waypoint) []CityDuration {
	index := make(map[string]int)
	out := []CityDuration{}
	for _, w := range ws {
		i, ok := index[w.City]
		if !ok {
			i = len(out)
			index[w.City] = i
			out = append(out, CityDuration{City: w.City})
		}
		out[i].Duration += w.Duration()
	}
	return out
}

// TimeSpentByType sums durations per type. Zero totals are omitted.
func TimeSpentByType(ws []domain.Waypoint) []TypeDuration {
	sums := make(map[domain.WaypointType]time.Duration)
	for _, w := range ws {
		sums[w.Type] += w.Duration()
	}
	out := []TypeDuration{}
	for _, t := range domain.WaypointTypes {
		if d := sums[t]; d != 0 {
			out = append(out, TypeDuration{Type: t, Duration: d})
		}
	}
	return out
}

func perType(ws []domain.Waypoint, value func(domain.Waypoint) int, include func(domain.WaypointType) bool) []TypeTotal {
	sums := make(map[domain.WaypointType]int)
	for _, w := range ws {
		sums[w.Type] += value(w)
	}
	out := []TypeTotal{}
	for _, t := range domain.WaypointTypes {
		if !include(t) {
			continue
		}
		if v := sums[t]; v != 0 {
			out = append(out, TypeTotal{Type: t, Value: v})
		}
	}
	return out
}
