// Package editor implements the per-waypoint view/edit state machine.
//
// Every transition is a pure function from (snapshot, event) to a new
// snapshot plus the events it emits for the orchestrator. The machine never
// touches the waypoint store: saves and deletes leave it as Emit values.
package editor

import (
	"fmt"
	"time"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// State is the editor state of one waypoint.
type State uint8

const (
	// Viewing shows the read-only card.
	Viewing State = iota
	// Editing holds a staged working copy.
	Editing
	// Saving waits for the commit round trip of a validated working copy.
	Saving
	// Deleting waits for the delete round trip.
	Deleting
	// Closed is terminal: the waypoint was deleted or a pending create was discarded.
	Closed
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Deleting:
		return "deleting"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// EventKind is a user command or a completion signal.
type EventKind uint8

const (
	Open EventKind = iota + 1
	Cancel
	Escape
	Submit
	Delete
	ChangeType
	ChangeCity
	// Committed signals that the save round trip finished.
	Committed
	// Removed signals that the delete round trip finished.
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Open:
		return "open"
	case Cancel:
		return "cancel"
	case Escape:
		return "escape"
	case Submit:
		return "submit"
	case Delete:
		return "delete"
	case ChangeType:
		return "change-type"
	case ChangeCity:
		return "change-city"
	case Committed:
		return "committed"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Fields are the form values sent on submit. Description and photos are not
// part of the form: they come from the staged working copy.
type Fields struct {
	Type       domain.WaypointType `json:"type"`
	City       string              `json:"city"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    time.Time           `json:"end_time"`
	Price      int                 `json:"price"`
	IsFavorite bool                `json:"is_favorite"`
	// SelectedOffers lists the titles of the checked offers. Staged offers
	// not listed are saved unselected.
	SelectedOffers []string `json:"selected_offers"`
}

// Event is delivered to a machine. Only the field matching Kind is read.
type Event struct {
	Kind   EventKind
	Fields Fields              // Submit
	Type   domain.WaypointType // ChangeType
	City   string              // ChangeCity
}

// EmitKind identifies what the orchestrator must do with an Emit.
type EmitKind uint8

const (
	// EmitSave carries (Previous, Next); Previous is nil for a new waypoint.
	EmitSave EmitKind = iota + 1
	// EmitDelete carries the record to remove in Previous.
	EmitDelete
	// EmitDiscard reports that a pending create was abandoned.
	EmitDiscard
)

// Emit is an outgoing message from a transition.
type Emit struct {
	Kind     EmitKind
	Previous *domain.Waypoint
	Next     *domain.Waypoint
}

// Snapshot is the complete state of one machine.
// Canonical is nil while a newly created waypoint waits for its first save.
type Snapshot struct {
	State         State
	Canonical     *domain.Waypoint
	Working       *domain.Waypoint
	OffersVisible bool
}

// Step is the result of a transition.
type Step struct {
	Next  Snapshot
	Emits []Emit
}

type transitionFunc func(cat domain.Catalog, s Snapshot, ev Event) (Step, error)

type edge struct {
	from State
	on   EventKind
}

// transitions is the whole machine. Any pair not listed is rejected with
// domain.ErrInvalidTransition; in particular nothing but Committed is
// accepted while Saving.
var transitions = map[edge]transitionFunc{
	{Viewing, Open}:       openEditor,
	{Viewing, Delete}:     deleteWaypoint,
	{Editing, Cancel}:     closeEditor,
	{Editing, Escape}:     closeEditor,
	{Editing, ChangeType}: changeType,
	{Editing, ChangeCity}: changeCity,
	{Editing, Submit}:     submit,
	{Editing, Delete}:     deleteWaypoint,
	{Saving, Committed}:   commit,
	{Deleting, Removed}:   finish,
}

// Transition applies ev to s. On error the returned Step carries s unchanged,
// except for domain.ErrCatalogMiss from ChangeCity, where the typed city is
// still staged and the Step must be applied.
func Transition(cat domain.Catalog, s Snapshot, ev Event) (Step, error) {
	fn, ok := transitions[edge{s.State, ev.Kind}]
	if !ok {
		return Step{Next: s}, fmt.Errorf("editor.Transition: %w: %s while %s", domain.ErrInvalidTransition, ev.Kind, s.State)
	}
	return fn(cat, s, ev)
}

func openEditor(_ domain.Catalog, s Snapshot, _ Event) (Step, error) {
	w := s.Canonical.Clone()
	return Step{Next: Snapshot{
		State:         Editing,
		Canonical:     s.Canonical,
		Working:       &w,
		OffersVisible: len(w.Offers) > 0,
	}}, nil
}

func closeEditor(_ domain.Catalog, s Snapshot, _ Event) (Step, error) {
	if s.Canonical == nil {
		return Step{
			Next:  Snapshot{State: Closed},
			Emits: []Emit{{Kind: EmitDiscard, Next: s.Working}},
		}, nil
	}
	return Step{Next: viewing(s.Canonical)}, nil
}

func changeType(cat domain.Catalog, s Snapshot, ev Event) (Step, error) {
	if !ev.Type.Valid() {
		return Step{Next: s}, fmt.Errorf("%w: unknown waypoint type %q", domain.ErrCatalogMiss, ev.Type)
	}
	w := s.Working.Clone()
	w.Type = ev.Type
	w.Offers = CatalogOffers(cat, ev.Type)

	next := s
	next.Working = &w
	next.OffersVisible = len(w.Offers) > 0
	return Step{Next: next}, nil
}

func changeCity(cat domain.Catalog, s Snapshot, ev Event) (Step, error) {
	w := s.Working.Clone()
	w.City = ev.City
	next := s
	next.Working = &w

	if !stageDestination(cat, &w) {
		return Step{Next: next}, fmt.Errorf("%w: no destination named %q", domain.ErrCatalogMiss, ev.City)
	}
	return Step{Next: next}, nil
}

func submit(cat domain.Catalog, s Snapshot, ev Event) (Step, error) {
	draft := applyFields(cat, *s.Working, ev.Fields)
	if err := Validate(cat, draft); err != nil {
		return Step{Next: s}, err
	}
	next := s
	next.State = Saving
	next.Working = &draft
	return Step{Next: next}, nil
}

func commit(_ domain.Catalog, s Snapshot, _ Event) (Step, error) {
	saved := s.Working.Clone()
	var prev *domain.Waypoint
	if s.Canonical != nil {
		p := s.Canonical.Clone()
		prev = &p
	}
	return Step{
		Next:  viewing(&saved),
		Emits: []Emit{{Kind: EmitSave, Previous: prev, Next: &saved}},
	}, nil
}

func deleteWaypoint(_ domain.Catalog, s Snapshot, _ Event) (Step, error) {
	if s.Canonical == nil {
		return Step{
			Next:  Snapshot{State: Closed},
			Emits: []Emit{{Kind: EmitDiscard, Next: s.Working}},
		}, nil
	}
	rec := s.Canonical.Clone()
	return Step{
		Next:  Snapshot{State: Deleting, Canonical: s.Canonical},
		Emits: []Emit{{Kind: EmitDelete, Previous: &rec}},
	}, nil
}

func finish(_ domain.Catalog, _ Snapshot, _ Event) (Step, error) {
	return Step{Next: Snapshot{State: Closed}}, nil
}

func viewing(w *domain.Waypoint) Snapshot {
	return Snapshot{State: Viewing, Canonical: w, OffersVisible: len(w.Offers) > 0}
}

// applyFields merges the submitted form into a copy of the working waypoint.
// A city that differs from the staged one refreshes description and photos
// the same way ChangeCity does; a type change replaces the offer list.
func applyFields(cat domain.Catalog, working domain.Waypoint, f Fields) domain.Waypoint {
	w := working.Clone()
	if f.Type != w.Type && f.Type.Valid() {
		w.Offers = CatalogOffers(cat, f.Type)
	}
	w.Type = f.Type
	if f.City != w.City {
		w.City = f.City
		stageDestination(cat, &w)
	}
	w.StartTime = f.StartTime
	w.EndTime = f.EndTime
	w.Price = f.Price
	w.IsFavorite = f.IsFavorite

	selected := make(map[string]bool, len(f.SelectedOffers))
	for _, title := range f.SelectedOffers {
		selected[title] = true
	}
	for i := range w.Offers {
		w.Offers[i].Selected = selected[w.Offers[i].Title]
	}
	return w
}

// stageDestination copies description and photos for w.City from the catalog.
// It reports false and leaves w untouched when the city is unknown.
func stageDestination(cat domain.Catalog, w *domain.Waypoint) bool {
	d, ok := cat.Destination(w.City)
	if !ok {
		return false
	}
	w.Description = d.Description
	w.Photos = d.Photos
	return true
}

// CatalogOffers returns the catalog offers for t as unselected waypoint offers.
func CatalogOffers(cat domain.Catalog, t domain.WaypointType) []domain.Offer {
	templates := cat.OffersFor(t)
	offers := make([]domain.Offer, len(templates))
	for i, o := range templates {
		offers[i] = domain.Offer{Title: o.Title, Price: o.Price}
	}
	return offers
}
