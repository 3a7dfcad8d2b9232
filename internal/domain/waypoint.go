package domain

import "time"

// WaypointType is the kind of trip event. The zero value is invalid.
type WaypointType string

const (
	TypeTaxi        WaypointType = "taxi"
	TypeBus         WaypointType = "bus"
	TypeTrain       WaypointType = "train"
	TypeShip        WaypointType = "ship"
	TypeTransport   WaypointType = "transport"
	TypeDrive       WaypointType = "drive"
	TypeFlight      WaypointType = "flight"
	TypeCheckIn     WaypointType = "check-in"
	TypeSightseeing WaypointType = "sightseeing"
	TypeRestaurant  WaypointType = "restaurant"
)

// WaypointTypes lists every type in display order. Statistics are reported in
// this order.
var WaypointTypes = []WaypointType{
	TypeTaxi, TypeBus, TypeTrain, TypeShip, TypeTransport, TypeDrive, TypeFlight,
	TypeCheckIn, TypeSightseeing, TypeRestaurant,
}

var typeTemplates = map[WaypointType]string{
	TypeTaxi:        "Taxi to",
	TypeBus:         "Bus to",
	TypeTrain:       "Train to",
	TypeShip:        "Ship to",
	TypeTransport:   "Transport to",
	TypeDrive:       "Drive to",
	TypeFlight:      "Flight to",
	TypeCheckIn:     "Check-in in",
	TypeSightseeing: "Sightseeing at",
	TypeRestaurant:  "Restaurant in",
}

// Valid reports whether t is one of the known waypoint types.
func (t WaypointType) Valid() bool {
	_, ok := typeTemplates[t]
	return ok
}

// Template returns the label shown before the destination, e.g. "Flight to".
func (t WaypointType) Template() string {
	return typeTemplates[t]
}

// IsTransport reports whether t moves the traveller between places.
// Check-in, sightseeing and restaurant stops are activities, not transport.
func (t WaypointType) IsTransport() bool {
	switch t {
	case TypeTaxi, TypeBus, TypeTrain, TypeShip, TypeTransport, TypeDrive, TypeFlight:
		return true
	}
	return false
}

// Offer is an optional extra attached to a waypoint.
type Offer struct {
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Selected bool   `json:"selected"`
}

// Photo is a destination picture.
type Photo struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

// Waypoint represents a single trip event.
// The store owns the canonical copy; editors only ever hold a Clone.
type Waypoint struct {
	ID          string       `json:"id"`
	Type        WaypointType `json:"type"`
	City        string       `json:"city"`
	Description string       `json:"description,omitempty"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Price       int          `json:"price"`
	Offers      []Offer      `json:"offers"`
	Photos      []Photo      `json:"photos"`
	IsFavorite  bool         `json:"is_favorite"`
}

// Clone returns a deep copy of w whose slices share no memory with w.
func (w Waypoint) Clone() Waypoint {
	c := w
	if w.Offers != nil {
		c.Offers = make([]Offer, len(w.Offers))
		copy(c.Offers, w.Offers)
	}
	if w.Photos != nil {
		c.Photos = make([]Photo, len(w.Photos))
		copy(c.Photos, w.Photos)
	}
	return c
}

// Duration returns EndTime - StartTime.
func (w Waypoint) Duration() time.Duration {
	return w.EndTime.Sub(w.StartTime)
}

// TotalPrice returns the base price plus the price of every selected offer.
func (w Waypoint) TotalPrice() int {
	total := w.Price
	for _, o := range w.Offers {
		if o.Selected {
			total += o.Price
		}
	}
	return total
}

// DayBucket describes which trip day a waypoint falls on.
// Buckets are derived from the store's chronological order and are never
// stored; bucket i always describes waypoint i.
type DayBucket struct {
	// TripDay is 1-based and increases each time the calendar day changes.
	TripDay   int       `json:"trip_day"`
	Day       int       `json:"day"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}
