package editor

import (
	"fmt"
	"strings"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// Validate is the save gate. A waypoint passes when:
//   - its type is known,
//   - its city is non-empty and names a catalog destination,
//   - its price and every offer price are >= 0,
//   - its end time is not before its start time.
//
// Failures wrap domain.ErrValidation with a human-readable reason.
func Validate(cat domain.Catalog, w domain.Waypoint) error {
	if !w.Type.Valid() {
		return fmt.Errorf("%w: unknown waypoint type %q", domain.ErrValidation, w.Type)
	}
	if strings.TrimSpace(w.City) == "" {
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	if _, ok := cat.Destination(w.City); !ok {
		return fmt.Errorf("%w: unknown destination %q", domain.ErrValidation, w.City)
	}
	if w.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	for _, o := range w.Offers {
		if o.Price < 0 {
			return fmt.Errorf("%w: offer %q has a negative price", domain.ErrValidation, o.Title)
		}
	}
	if w.EndTime.Before(w.StartTime) {
		return fmt.Errorf("%w: end_time must not be before start_time", domain.ErrValidation)
	}
	return nil
}
