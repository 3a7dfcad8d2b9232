package domain

import "time"

// ExportRow is a single row in the itinerary export.
// It is a flat view: one row per waypoint in chronological order, with the
// trip day it falls on.
//
// Offers holds the titles of the selected offers only, in their stored order.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	WaypointID string
	TripDay    int
	Date       string // "2006-01-02" in the partition location
	Type       WaypointType
	Title      string // type template + city, e.g. "Flight to Geneva"
	City       string
	StartTime  time.Time
	EndTime    time.Time
	Price      int
	TotalPrice int
	Offers     []string
	IsFavorite bool
}
