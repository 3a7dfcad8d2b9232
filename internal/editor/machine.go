package editor

import (
	"errors"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// Machine is the stateful controller of one waypoint. It is not safe for
// concurrent use; the orchestrator serialises access.
type Machine struct {
	id   string
	cat  domain.Catalog
	snap Snapshot
}

// NewViewing returns a machine for a stored waypoint, starting in Viewing.
func NewViewing(cat domain.Catalog, w domain.Waypoint) *Machine {
	c := w.Clone()
	return &Machine{id: w.ID, cat: cat, snap: viewing(&c)}
}

// NewCreating returns a machine for a waypoint that has never been saved,
// starting in Editing with draft as its working copy.
func NewCreating(cat domain.Catalog, draft domain.Waypoint) *Machine {
	w := draft.Clone()
	return &Machine{id: draft.ID, cat: cat, snap: Snapshot{
		State:         Editing,
		Working:       &w,
		OffersVisible: len(w.Offers) > 0,
	}}
}

// ID returns the waypoint ID the machine controls.
func (m *Machine) ID() string { return m.id }

// State returns the current state.
func (m *Machine) State() State { return m.snap.State }

// Pending reports whether the waypoint has never been saved.
func (m *Machine) Pending() bool { return m.snap.Canonical == nil }

// Snapshot returns the current snapshot.
func (m *Machine) Snapshot() Snapshot { return m.snap }

// Apply runs ev through Transition and keeps the resulting snapshot.
// A domain.ErrCatalogMiss is returned to the caller but the step is kept.
func (m *Machine) Apply(ev Event) ([]Emit, error) {
	step, err := Transition(m.cat, m.snap, ev)
	if err != nil && !errors.Is(err, domain.ErrCatalogMiss) {
		return nil, err
	}
	m.snap = step.Next
	return step.Emits, err
}

// Card renders the machine for the board. A pending machine shows its
// working copy as the waypoint.
func (m *Machine) Card() domain.Card {
	c := domain.Card{State: m.snap.State.String(), OffersVisible: m.snap.OffersVisible}
	switch {
	case m.snap.Canonical != nil:
		c.Waypoint = m.snap.Canonical.Clone()
	case m.snap.Working != nil:
		c.Waypoint = m.snap.Working.Clone()
	}
	if m.snap.Working != nil {
		d := m.snap.Working.Clone()
		c.Draft = &d
	}
	return c
}
