// Package repo contains the data access layer for the itinerary application.
// Waypoints live in an in-memory store; reference data (destinations and
// offers) is read from Postgres. No business logic lives here.
package repo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// WaypointRepo defines the operations on the canonical waypoint collection.
// The service layer depends on this interface, not the concrete implementation,
// which allows the orchestrator to be unit-tested with a mock.
type WaypointRepo interface {
	// Insert adds w and re-sorts the collection by start time. Waypoints with
	// equal start times keep the order they were inserted in. Duplicate IDs
	// are not checked.
	Insert(w domain.Waypoint)

	// Replace swaps the waypoint stored under oldID for w and re-sorts.
	// Returns domain.ErrNotFound if oldID is not stored.
	Replace(oldID string, w domain.Waypoint) error

	// Remove deletes the waypoint with the given ID.
	// Returns domain.ErrNotFound if it is not stored.
	Remove(id string) error

	// GetByID returns a copy of the waypoint with the given ID.
	// Returns domain.ErrNotFound if it is not stored.
	GetByID(id string) (domain.Waypoint, error)

	// List returns a copy of the collection in canonical order.
	List() []domain.Waypoint

	// Len returns the number of stored waypoints.
	Len() int

	// Reset replaces the whole collection and sorts it chronologically.
	Reset(ws []domain.Waypoint)

	// SortBy returns the collection in the requested order. Only
	// domain.SortEvent rewrites canonical order; the other modes return a
	// sorted copy and leave storage untouched.
	SortBy(mode domain.SortMode) []domain.Waypoint
}

// memWaypointRepo is the in-memory implementation of WaypointRepo.
type memWaypointRepo struct {
	mu        sync.RWMutex
	waypoints []domain.Waypoint
}

// NewWaypointRepo constructs an empty in-memory WaypointRepo.
func NewWaypointRepo() WaypointRepo {
	return &memWaypointRepo{}
}

func (r *memWaypointRepo) Insert(w domain.Waypoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.waypoints = append(r.waypoints, w.Clone())
	sortChronological(r.waypoints)
}

func (r *memWaypointRepo) Replace(oldID string, w domain.Waypoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(oldID)
	if i < 0 {
		return fmt.Errorf("repo.WaypointRepo.Replace: %w", domain.ErrNotFound)
	}
	r.waypoints[i] = w.Clone()
	sortChronological(r.waypoints)
	return nil
}

func (r *memWaypointRepo) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("repo.WaypointRepo.Remove: %w", domain.ErrNotFound)
	}
	r.waypoints = append(r.waypoints[:i], r.waypoints[i+1:]...)
	return nil
}

func (r *memWaypointRepo) GetByID(id string) (domain.Waypoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Waypoint{}, fmt.Errorf("repo.WaypointRepo.GetByID: %w", domain.ErrNotFound)
	}
	return r.waypoints[i].Clone(), nil
}

func (r *memWaypointRepo) List() []domain.Waypoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.waypoints)
}

func (r *memWaypointRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.waypoints)
}

func (r *memWaypointRepo) Reset(ws []domain.Waypoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.waypoints = cloneAll(ws)
	sortChronological(r.waypoints)
}

func (r *memWaypointRepo) SortBy(mode domain.SortMode) []domain.Waypoint {
	switch mode {
	case domain.SortTime:
		out := r.List()
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Duration() < out[j].Duration()
		})
		return out
	case domain.SortPrice:
		out := r.List()
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price < out[j].Price
		})
		return out
	default:
		r.mu.Lock()
		defer r.mu.Unlock()
		sortChronological(r.waypoints)
		return cloneAll(r.waypoints)
	}
}

// indexOf returns the position of id, or -1. Callers must hold the lock.
func (r *memWaypointRepo) indexOf(id string) int {
	for i := range r.waypoints {
		if r.waypoints[i].ID == id {
			return i
		}
	}
	return -1
}

// sortChronological orders ws by start time ascending, keeping the relative
// order of equal start times.
func sortChronological(ws []domain.Waypoint) {
	sort.SliceStable(ws, func(i, j int) bool {
		return ws[i].StartTime.Before(ws[j].StartTime)
	})
}

func cloneAll(ws []domain.Waypoint) []domain.Waypoint {
	out := make([]domain.Waypoint, len(ws))
	for i, w := range ws {
		out[i] = w.Clone()
	}
	return out
}
