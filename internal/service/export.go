package service

import (
	"context"
	"time"

	"github.com/pkordes/itinerary/backend/internal/domain"
	"github.com/pkordes/itinerary/backend/internal/repo"
)

// ExportService assembles a flat export of the itinerary.
type ExportService struct {
	waypoints repo.WaypointRepo
	loc       *time.Location
}

// NewExportService constructs an ExportService over the waypoint store.
// Dates and trip days are computed in loc; nil means time.Local.
func NewExportService(waypoints repo.WaypointRepo, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{waypoints: waypoints, loc: loc}
}

// Export returns one ExportRow per waypoint in chronological order.
func (s *ExportService) Export(_ context.Context) ([]domain.ExportRow, error) {
	ws := s.waypoints.List()
	buckets := PartitionDays(ws, s.loc)

	rows := make([]domain.ExportRow, 0, len(ws))
	for i, w := range ws {
		offers := []string{}
		for _, o := range w.Offers {
			if o.Selected {
				offers = append(offers, o.Title)
			}
		}
		rows = append(rows, domain.ExportRow{
			WaypointID: w.ID,
			TripDay:    buckets[i].TripDay,
			Date:       w.StartTime.In(s.loc).Format("2006-01-02"),
			Type:       w.Type,
			Title:      w.Type.Template() + " " + w.City,
			City:       w.City,
			StartTime:  w.StartTime,
			EndTime:    w.EndTime,
			Price:      w.Price,
			TotalPrice: w.TotalPrice(),
			Offers:     offers,
			IsFavorite: w.IsFavorite,
		})
	}
	return rows, nil
}
