package service

import (
	"time"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// PartitionDays derives one DayBucket per waypoint from ws, which must be in
// chronological order. TripDay starts at 1 and increases whenever the
// calendar date of a waypoint's start time (in loc) differs from the previous
// one. A nil loc means time.Local. Always returns a non-nil slice.
func PartitionDays(ws []domain.Waypoint, loc *time.Location) []domain.DayBucket {
	if loc == nil {
		loc = time.Local
	}
	buckets := make([]domain.DayBucket, 0, len(ws))

	tripDay := 1
	var prevY, prevD int
	var prevM time.Month
	for i, w := range ws {
		start := w.StartTime.In(loc)
		y, m, d := start.Date()
		if i > 0 && (y != prevY || m != prevM || d != prevD) {
			tripDay++
		}
		buckets = append(buckets, domain.DayBucket{
			TripDay:   tripDay,
			Day:       d,
			Month:     m.String(),
			Timestamp: w.StartTime,
		})
		prevY, prevM, prevD = y, m, d
	}
	return buckets
}

// dayRuns splits indexes [0, len(buckets)) into consecutive runs sharing a
// TripDay. Each run is returned as a half-open [from, to) pair.
func dayRuns(buckets []domain.DayBucket) [][2]int {
	var runs [][2]int
	from := 0
	for i := 1; i <= len(buckets); i++ {
		if i == len(buckets) || buckets[i].TripDay != buckets[from].TripDay {
			runs = append(runs, [2]int{from, i})
			from = i
		}
	}
	return runs
}
