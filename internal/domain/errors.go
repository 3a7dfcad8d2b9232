package domain

import "errors"

// ErrNotFound is returned by store and service functions when the requested
// waypoint does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a submitted waypoint fails the save gate
// (unknown city, negative price, end before start).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCatalogMiss is returned when a typed city or a chosen type has no entry in
// the reference catalog. It is never fatal: staged fields stay unchanged.
var ErrCatalogMiss = errors.New("catalog miss")

// ErrInvalidTransition is returned by the editor when an event is not allowed
// in the machine's current state (e.g. cancel while a save is in flight).
// Handlers should map this to HTTP 409 Conflict.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrEditorBusy is returned when an editor cannot be opened because the
// active editor is waiting for its save to complete.
// Handlers should map this to HTTP 409 Conflict.
var ErrEditorBusy = errors.New("editor busy")
