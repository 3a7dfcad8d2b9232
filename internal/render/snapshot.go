// Package render holds the mount target the orchestrator draws the board on.
package render

import (
	"context"
	"sync"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// Snapshot is a Surface that keeps the most recently mounted board in memory
// for the HTTP layer to serve. Readers that arrive between Unmount and the
// following Mount still see the previous board, so a render never shows up
// as a missing board.
type Snapshot struct {
	mu    sync.RWMutex
	board *domain.Board
}

// NewSnapshot returns an empty surface.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Unmount retires the current board. It stays readable until Mount
// replaces it.
func (s *Snapshot) Unmount(_ context.Context) error {
	return nil
}

// Mount replaces the current board with b.
func (s *Snapshot) Mount(_ context.Context, b domain.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = &b
	return nil
}

// Board returns the last mounted board, or false before the first Mount.
func (s *Snapshot) Board() (domain.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.board == nil {
		return domain.Board{}, false
	}
	return *s.board, true
}
