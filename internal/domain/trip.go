// Package domain contains the core data types for the itinerary application.
// This package has zero external dependencies and is imported by every other
// internal package (repo, editor, service, handler).
package domain

import (
	"fmt"
	"time"
)

// SortMode selects the order in which the board lists waypoints.
type SortMode string

const (
	// SortEvent is chronological order. It is the only mode that changes the
	// store's canonical order.
	SortEvent SortMode = "event"
	// SortTime orders by duration, shortest first. Display only.
	SortTime SortMode = "time"
	// SortPrice orders by base price, cheapest first. Display only.
	SortPrice SortMode = "price"
)

// ParseSortMode converts a query value into a SortMode.
// An empty string means SortEvent.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortEvent:
		return SortEvent, nil
	case SortTime, SortPrice:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("%w: unknown sort mode %q", ErrValidation, s)
}

// Filter narrows a waypoint listing relative to the current instant.
type Filter string

const (
	FilterEverything Filter = "everything"
	FilterFuture     Filter = "future"
	FilterPast       Filter = "past"
)

// ParseFilter converts a query value into a Filter.
// An empty string means FilterEverything.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterEverything:
		return FilterEverything, nil
	case FilterFuture, FilterPast:
		return Filter(s), nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", ErrValidation, s)
}

// TripInfo is the header summary of the whole itinerary.
// Start and End are nil when there are no waypoints.
type TripInfo struct {
	Route     string     `json:"route"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	TotalCost int        `json:"total_cost"`
}

// Card is one rendered waypoint together with its editor state.
// Draft is the staged working copy and is only set while editing or saving.
type Card struct {
	Waypoint      Waypoint  `json:"waypoint"`
	State         string    `json:"state"`
	Draft         *Waypoint `json:"draft,omitempty"`
	OffersVisible bool      `json:"offers_visible"`
}

// BoardDay is one visual day container. Bucket is nil in the duration and
// price views, which are not grouped by day.
type BoardDay struct {
	Bucket *DayBucket `json:"bucket,omitempty"`
	Cards  []Card     `json:"cards"`
}

// Board is the complete rendered itinerary handed to the render surface.
// Empty is true when the store holds no waypoints ("no waypoints" state).
type Board struct {
	Mode    SortMode   `json:"mode"`
	Days    []BoardDay `json:"days"`
	Pending *Card      `json:"pending,omitempty"`
	Empty   bool       `json:"empty"`
	Info    TripInfo   `json:"info"`
}

// ChangeAction names an accepted mutation.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// Change is published after a mutation has been applied to the store.
type Change struct {
	Action   ChangeAction `json:"action"`
	Waypoint Waypoint     `json:"waypoint"`
	At       time.Time    `json:"at"`
}
