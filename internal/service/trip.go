// Package service contains the business logic of the itinerary application.
// TripService orchestrates the waypoint store, the per-waypoint editors, day
// partitioning and rendering. Partitioning, statistics and trip info are pure
// functions over store snapshots.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/editor"
	"github.com/pkordes/itinerary/backend/internal/repo"
)

// Surface receives the rendered board. The whole board is unmounted and
// mounted again on every render; there is no incremental patching.
type Surface interface {
	Unmount(ctx context.Context) error
	Mount(ctx context.Context, board domain.Board) error
}

// Notifier is told about every mutation applied to the store.
type Notifier interface {
	Notify(ctx context.Context, change domain.Change) error
}

// Metrics records orchestrator activity. All methods must be cheap.
type Metrics interface {
	MutationApplied(action domain.ChangeAction)
	ValidationRejected()
	StaleCompletion()
	Rendered(waypoints int, took time.Duration)
	EditorOpen(open bool)
}

// TripDeps carries the collaborators of a TripService.
// Store, Surface, Clock and Scheduler are required; the rest are optional.
type TripDeps struct {
	Store       repo.WaypointRepo
	Catalog     domain.Catalog
	Surface     Surface
	Clock       Clock
	Scheduler   Scheduler
	Notifier    Notifier
	Metrics     Metrics
	Logger      *slog.Logger
	Location    *time.Location
	CommitDelay time.Duration
}

// TripService owns the store and one editor machine per rendered waypoint.
//
// Every command and every scheduled completion runs under mu, so events are
// handled strictly one at a time in arrival order. At most one machine is
// Editing or Saving at any moment: it is tracked in the active slot. A
// waypoint being created lives in the pending slot until its first save.
type TripService struct {
	store     repo.WaypointRepo
	catalog   domain.Catalog
	surface   Surface
	clock     Clock
	scheduler Scheduler
	notifier  Notifier
	metrics   Metrics
	log       *slog.Logger
	loc       *time.Location
	delay     time.Duration

	mu       sync.Mutex
	machines map[string]*editor.Machine
	pending  *editor.Machine
	active   string
	mode     domain.SortMode
}

// NewTripService constructs a TripService from deps.
func NewTripService(deps TripDeps) *TripService {
	s := &TripService{
		store:     deps.Store,
		catalog:   deps.Catalog,
		surface:   deps.Surface,
		clock:     deps.Clock,
		scheduler: deps.Scheduler,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		loc:       deps.Location,
		delay:     deps.CommitDelay,
		machines:  make(map[string]*editor.Machine),
		mode:      domain.SortEvent,
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// Load replaces the whole itinerary. Every waypoint must pass the save gate;
// on the first failure nothing is stored. Waypoints without an ID get one.
// All editors, including a pending create, are discarded.
func (s *TripService) Load(ctx context.Context, ws []domain.Waypoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]domain.Waypoint, len(ws))
	for i, w := range ws {
		if err := editor.Validate(s.catalog, w); err != nil {
			return fmt.Errorf("service.TripService.Load: %w (waypoint %d)", err, i)
		}
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		batch[i] = w.Clone()
	}

	s.store.Reset(batch)
	s.machines = make(map[string]*editor.Machine)
	s.pending = nil
	s.setActive("")
	if err := s.rebuild(ctx); err != nil {
		return fmt.Errorf("service.TripService.Load: %w", err)
	}
	return nil
}

// BeginCreate opens an editor for a new waypoint. While one is pending a
// second call changes nothing and returns the pending card.
func (s *TripService) BeginCreate(ctx context.Context) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		return s.pending.Card(), nil
	}
	names := s.catalog.DestinationNames()
	if len(names) == 0 {
		return domain.Card{}, fmt.Errorf("service.TripService.BeginCreate: %w: catalog has no destinations", domain.ErrCatalogMiss)
	}
	if err := s.closeActive(); err != nil {
		return domain.Card{}, fmt.Errorf("service.TripService.BeginCreate: %w", err)
	}

	dest, _ := s.catalog.Destination(names[0])
	typ := domain.WaypointTypes[0]
	now := s.clock.Now()
	draft := domain.Waypoint{
		ID:          uuid.NewString(),
		Type:        typ,
		City:        dest.Name,
		Description: dest.Description,
		Photos:      dest.Photos,
		StartTime:   now,
		EndTime:     now,
		Offers:      editor.CatalogOffers(s.catalog, typ),
	}
	s.pending = editor.NewCreating(s.catalog, draft)
	s.setActive(draft.ID)

	if err := s.render(ctx); err != nil {
		return domain.Card{}, fmt.Errorf("service.TripService.BeginCreate: %w", err)
	}
	return s.pending.Card(), nil
}

// OpenEditor switches waypoint id to its edit view. Any other open editor is
// closed first and its staged changes are discarded.
// Returns domain.ErrNotFound for an unknown id and domain.ErrEditorBusy when
// the open editor is still saving.
func (s *TripService) OpenEditor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookup(id)
	if err != nil {
		return fmt.Errorf("service.TripService.OpenEditor: %w", err)
	}
	if s.active == id && m.State() == editor.Editing {
		return nil
	}
	// The open editor is only closed once the target is known to open.
	if _, err := editor.Transition(s.catalog, m.Snapshot(), editor.Event{Kind: editor.Open}); err != nil {
		return fmt.Errorf("service.TripService.OpenEditor: %w", err)
	}
	if err := s.closeActive(); err != nil {
		return fmt.Errorf("service.TripService.OpenEditor: %w", err)
	}
	if _, err := m.Apply(editor.Event{Kind: editor.Open}); err != nil {
		return fmt.Errorf("service.TripService.OpenEditor: %w", err)
	}
	s.setActive(id)

	if err := s.render(ctx); err != nil {
		return fmt.Errorf("service.TripService.OpenEditor: %w", err)
	}
	return nil
}

// Cancel closes the editor of waypoint id without saving. Cancelling a
// pending create discards it.
func (s *TripService) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeEditor(ctx, id, editor.Cancel); err != nil {
		return fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	return nil
}

// Escape closes whichever editor is open. It does nothing when none is.
func (s *TripService) Escape(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return nil
	}
	if err := s.closeEditor(ctx, s.active, editor.Escape); err != nil {
		return fmt.Errorf("service.TripService.Escape: %w", err)
	}
	return nil
}

// ChangeType stages a new waypoint type and its catalog offers.
func (s *TripService) ChangeType(ctx context.Context, id string, t domain.WaypointType) (domain.Card, error) {
	return s.stage(ctx, id, editor.Event{Kind: editor.ChangeType, Type: t}, "ChangeType")
}

// ChangeCity stages the typed city. The returned error wraps
// domain.ErrCatalogMiss when the city is unknown; the card is still valid.
func (s *TripService) ChangeCity(ctx context.Context, id string, city string) (domain.Card, error) {
	return s.stage(ctx, id, editor.Event{Kind: editor.ChangeCity, City: city}, "ChangeCity")
}

func (s *TripService) stage(ctx context.Context, id string, ev editor.Event, op string) (domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookup(id)
	if err != nil {
		return domain.Card{}, fmt.Errorf("service.TripService.%s: %w", op, err)
	}
	_, applyErr := m.Apply(ev)
	if applyErr != nil && !errors.Is(applyErr, domain.ErrCatalogMiss) {
		return domain.Card{}, fmt.Errorf("service.TripService.%s: %w", op, applyErr)
	}
	if err := s.render(ctx); err != nil {
		return domain.Card{}, fmt.Errorf("service.TripService.%s: %w", op, err)
	}
	if applyErr != nil {
		return m.Card(), fmt.Errorf("service.TripService.%s: %w", op, applyErr)
	}
	return m.Card(), nil
}

// Submit runs the save gate on the form and, when it passes, starts the save
// round trip. The store changes only when the round trip completes.
// A domain.ErrValidation leaves the editor open with its staged copy intact.
func (s *TripService) Submit(ctx context.Context, id string, f editor.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookup(id)
	if err != nil {
		return fmt.Errorf("service.TripService.Submit: %w", err)
	}
	if _, err := m.Apply(editor.Event{Kind: editor.Submit, Fields: f}); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.metrics.ValidationRejected()
			s.log.DebugContext(ctx, "submit rejected", "waypoint_id", id, "error", err)
		}
		return fmt.Errorf("service.TripService.Submit: %w", err)
	}
	s.scheduler.AfterFunc(s.delay, func() { s.completeSave(m) })

	if err := s.render(ctx); err != nil {
		return fmt.Errorf("service.TripService.Submit: %w", err)
	}
	return nil
}

// Delete starts the delete round trip for waypoint id. Deleting a pending
// create discards it immediately. Returns domain.ErrNotFound for an unknown id.
func (s *TripService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.lookup(id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	emits, err := m.Apply(editor.Event{Kind: editor.Delete})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if s.active == id {
		s.setActive("")
	}
	if s.discarded(emits) {
		return s.renderOrWrap(ctx, "Delete")
	}
	s.scheduler.AfterFunc(s.delay, func() { s.completeDelete(m) })
	return s.renderOrWrap(ctx, "Delete")
}

// Sort re-renders the board in mode. Only domain.SortEvent rewrites the
// store's canonical order; the next mutation reverts to it.
func (s *TripService) Sort(ctx context.Context, mode domain.SortMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch mode {
	case domain.SortEvent, domain.SortTime, domain.SortPrice:
	default:
		return fmt.Errorf("service.TripService.Sort: %w: unknown sort mode %q", domain.ErrValidation, mode)
	}
	s.mode = mode
	if mode == domain.SortEvent {
		s.store.SortBy(domain.SortEvent)
	}
	return s.renderOrWrap(ctx, "Sort")
}

// Mode returns the current board sort mode.
func (s *TripService) Mode() domain.SortMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// List returns the stored waypoints in canonical order narrowed by f.
func (s *TripService) List(_ context.Context, f domain.Filter) []domain.Waypoint {
	return ApplyFilter(s.store.List(), f, s.clock.Now())
}

// GetByID returns a stored waypoint.
func (s *TripService) GetByID(_ context.Context, id string) (domain.Waypoint, error) {
	w, err := s.store.GetByID(id)
	if err != nil {
		return domain.Waypoint{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return w, nil
}

// Days returns the day buckets of the current canonical order.
func (s *TripService) Days(_ context.Context) []domain.DayBucket {
	return PartitionDays(s.store.List(), s.loc)
}

// TripInfo returns the header summary of the itinerary.
func (s *TripService) TripInfo(_ context.Context) domain.TripInfo {
	return BuildTripInfo(s.store.List())
}

// Statistics computes the aggregates over the stored waypoints.
func (s *TripService) Statistics(_ context.Context) Statistics {
	return ComputeStatistics(s.store.List())
}

// Catalog returns the reference data the editors consult.
func (s *TripService) Catalog() domain.Catalog {
	return s.catalog
}

// ---- completions -----------------------------------------------------------

// completeSave finishes the save round trip of m. Completions for a machine
// that is no longer tracked, no longer saving, or whose waypoint has left
// the store are dropped.
func (s *TripService) completeSave(m *editor.Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := context.Background()

	if !s.tracked(m) || m.State() != editor.Saving {
		s.dropStale(ctx, "save", m.ID())
		return
	}
	emits, err := m.Apply(editor.Event{Kind: editor.Committed})
	if err != nil {
		s.log.ErrorContext(ctx, "commit failed", "waypoint_id", m.ID(), "error", err)
		return
	}

	for _, e := range emits {
		if e.Kind != editor.EmitSave {
			continue
		}
		action := domain.ActionUpdate
		if e.Previous == nil {
			action = domain.ActionCreate
			s.store.Insert(*e.Next)
			s.pending = nil
			s.machines[m.ID()] = m
		} else if err := s.store.Replace(e.Previous.ID, *e.Next); err != nil {
			delete(s.machines, m.ID())
			if s.active == m.ID() {
				s.setActive("")
			}
			s.dropStale(ctx, "save", m.ID())
			s.logRender(ctx, s.render(ctx))
			return
		}
		if s.active == m.ID() {
			s.setActive("")
		}
		s.applied(ctx, action, *e.Next)
	}
}

// completeDelete finishes the delete round trip of m.
func (s *TripService) completeDelete(m *editor.Machine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := context.Background()

	if !s.tracked(m) || m.State() != editor.Deleting {
		s.dropStale(ctx, "delete", m.ID())
		return
	}
	rec, err := s.store.GetByID(m.ID())
	if err == nil {
		err = s.store.Remove(m.ID())
	}
	delete(s.machines, m.ID())
	if err != nil {
		s.dropStale(ctx, "delete", m.ID())
		s.logRender(ctx, s.render(ctx))
		return
	}
	if _, err := m.Apply(editor.Event{Kind: editor.Removed}); err != nil {
		s.log.ErrorContext(ctx, "remove failed", "waypoint_id", m.ID(), "error", err)
	}
	s.applied(ctx, domain.ActionDelete, rec)
}

// applied runs the tail of the mutation protocol after the store changed:
// rebuild everything, then report.
func (s *TripService) applied(ctx context.Context, action domain.ChangeAction, w domain.Waypoint) {
	s.logRender(ctx, s.rebuild(ctx))
	s.metrics.MutationApplied(action)
	s.log.InfoContext(ctx, "waypoint "+string(action)+"d", "waypoint_id", w.ID, "waypoints", s.store.Len())

	if s.notifier == nil {
		return
	}
	change := domain.Change{Action: action, Waypoint: w, At: s.clock.Now()}
	if err := s.notifier.Notify(ctx, change); err != nil {
		s.log.WarnContext(ctx, "notify failed", "action", action, "waypoint_id", w.ID, "error", err)
	}
}

func (s *TripService) dropStale(ctx context.Context, op, id string) {
	s.metrics.StaleCompletion()
	s.log.InfoContext(ctx, "dropping stale completion", "op", op, "waypoint_id", id)
}

// ---- internals (callers hold mu) -------------------------------------------

// lookup returns the machine for id, instantiating a Viewing machine for a
// stored waypoint that has not been rendered yet.
func (s *TripService) lookup(id string) (*editor.Machine, error) {
	if s.pending != nil && s.pending.ID() == id {
		return s.pending, nil
	}
	if m, ok := s.machines[id]; ok {
		return m, nil
	}
	w, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	m := editor.NewViewing(s.catalog, w)
	s.machines[id] = m
	return m, nil
}

// tracked reports whether m is still the machine registered for its id.
func (s *TripService) tracked(m *editor.Machine) bool {
	if s.pending == m {
		return true
	}
	return s.machines[m.ID()] == m
}

// closeActive closes the open editor before another one opens.
func (s *TripService) closeActive() error {
	if s.active == "" {
		return nil
	}
	m, err := s.lookup(s.active)
	if err != nil {
		s.setActive("")
		return nil
	}
	switch m.State() {
	case editor.Saving:
		return fmt.Errorf("%w: waypoint %s is saving", domain.ErrEditorBusy, s.active)
	case editor.Editing:
		emits, err := m.Apply(editor.Event{Kind: editor.Cancel})
		if err != nil {
			return err
		}
		s.discarded(emits)
	}
	s.setActive("")
	return nil
}

func (s *TripService) closeEditor(ctx context.Context, id string, kind editor.EventKind) error {
	m, err := s.lookup(id)
	if err != nil {
		return err
	}
	emits, err := m.Apply(editor.Event{Kind: kind})
	if err != nil {
		return err
	}
	s.discarded(emits)
	if s.active == id {
		s.setActive("")
	}
	return s.render(ctx)
}

// discarded clears the pending slot when emits report a discarded create.
func (s *TripService) discarded(emits []editor.Emit) bool {
	for _, e := range emits {
		if e.Kind == editor.EmitDiscard {
			s.pending = nil
			return true
		}
	}
	return false
}

func (s *TripService) setActive(id string) {
	s.active = id
	s.metrics.EditorOpen(id != "")
}

// rebuild drops every idle editor, resets the sort mode to chronological and
// renders from scratch. Editors waiting on a round trip and the pending
// create survive.
func (s *TripService) rebuild(ctx context.Context) error {
	for id, m := range s.machines {
		switch m.State() {
		case editor.Saving, editor.Deleting:
			continue
		}
		delete(s.machines, id)
		if s.active == id {
			s.setActive("")
		}
	}
	s.mode = domain.SortEvent
	s.store.SortBy(domain.SortEvent)
	return s.render(ctx)
}

// render builds the board in the current mode and hands it to the surface.
func (s *TripService) render(ctx context.Context) error {
	start := time.Now()

	ws := s.store.SortBy(s.mode)
	cards := make([]domain.Card, len(ws))
	for i, w := range ws {
		m, ok := s.machines[w.ID]
		if !ok {
			m = editor.NewViewing(s.catalog, w)
			s.machines[w.ID] = m
		}
		cards[i] = m.Card()
	}

	board := domain.Board{
		Mode:  s.mode,
		Days:  []domain.BoardDay{},
		Empty: len(ws) == 0 && s.pending == nil,
		Info:  BuildTripInfo(s.store.List()),
	}
	if s.pending != nil {
		c := s.pending.Card()
		board.Pending = &c
	}
	if s.mode == domain.SortEvent {
		buckets := PartitionDays(ws, s.loc)
		for _, run := range dayRuns(buckets) {
			b := buckets[run[0]]
			board.Days = append(board.Days, domain.BoardDay{Bucket: &b, Cards: cards[run[0]:run[1]]})
		}
	} else if len(cards) > 0 {
		board.Days = append(board.Days, domain.BoardDay{Cards: cards})
	}

	if err := s.surface.Unmount(ctx); err != nil {
		return fmt.Errorf("unmount: %w", err)
	}
	if err := s.surface.Mount(ctx, board); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	s.metrics.Rendered(len(ws), time.Since(start))
	return nil
}

func (s *TripService) renderOrWrap(ctx context.Context, op string) error {
	if err := s.render(ctx); err != nil {
		return fmt.Errorf("service.TripService.%s: %w", op, err)
	}
	return nil
}

func (s *TripService) logRender(ctx context.Context, err error) {
	if err != nil {
		s.log.ErrorContext(ctx, "render failed", "error", err)
	}
}

type nopMetrics struct{}

func (nopMetrics) MutationApplied(domain.ChangeAction) {}
func (nopMetrics) ValidationRejected()                 {}
func (nopMetrics) StaleCompletion()                    {}
func (nopMetrics) Rendered(int, time.Duration)         {}
func (nopMetrics) EditorOpen(bool)                     {}
