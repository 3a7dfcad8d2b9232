package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"waypoint_id", "trip_day", "date", "type", "title", "city",
	"start_time", "end_time", "price", "total_price", "offers", "is_favorite",
}

// ExportRow is one JSON export row.
type ExportRow struct {
	WaypointID string              `json:"waypoint_id"`
	TripDay    int                 `json:"trip_day"`
	Date       string              `json:"date"`
	Type       domain.WaypointType `json:"type"`
	Title      string              `json:"title"`
	City       string              `json:"city"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    time.Time           `json:"end_time"`
	Price      int                 `json:"price"`
	TotalPrice int                 `json:"total_price"`
	Offers     []string            `json:"offers"`
	IsFavorite bool                `json:"is_favorite"`
}

// GetExport handles GET /export.
// It returns one row per waypoint in chronological order.
// Use ?format=csv for CSV or ?format=ics for iCalendar; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "export")
		return
	}

	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, buildJSONResponse(rows))
	case "csv":
		writeBody(w, "text/csv", "itinerary.csv", buildCSV(rows))
	case "ics":
		var buf bytes.Buffer
		if err := buildICS(rows, time.Now().UTC(), &buf); err != nil {
			writeServiceError(w, r, err, "export")
			return
		}
		writeBody(w, "text/calendar", "itinerary.ics", &buf)
	default:
		writeJSON(w, http.StatusBadRequest, requestBody(fmt.Sprintf("unknown export format %q", format)))
	}
}

func writeBody(w http.ResponseWriter, contentType, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// buildJSONResponse converts domain rows to the JSON response type.
func buildJSONResponse(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow(r))
	}
	return out
}

// buildCSV encodes rows as CSV. Offers within a row are pipe-separated ("|")
// to keep each waypoint on a single CSV line.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail.
	_ = w.Write(csvHeaders)
	for _, r := range rows {
		_ = w.Write(domainRowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.WaypointID,
		strconv.Itoa(r.TripDay),
		r.Date,
		string(r.Type),
		r.Title,
		r.City,
		r.StartTime.UTC().Format(time.RFC3339),
		r.EndTime.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Price),
		strconv.Itoa(r.TotalPrice),
		strings.Join(r.Offers, "|"),
		strconv.FormatBool(r.IsFavorite),
	}
}

// buildICS writes one VEVENT per row. Event UIDs are the waypoint IDs so
// re-importing an export updates events instead of duplicating them.
func buildICS(rows []domain.ExportRow, now time.Time, w *bytes.Buffer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//itinerary//export//EN")

	for _, r := range rows {
		event := cal.AddEvent(r.WaypointID + "@itinerary")
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetModifiedAt(now)
		event.SetStartAt(r.StartTime)
		event.SetEndAt(r.EndTime)
		event.SetSummary(r.Title)
		event.SetLocation(r.City)

		description := fmt.Sprintf("Day %d\nPrice: %d\nTotal: %d", r.TripDay, r.Price, r.TotalPrice)
		if len(r.Offers) > 0 {
			description += "\nOffers: " + strings.Join(r.Offers, ", ")
		}
		event.SetDescription(description)
	}

	return cal.SerializeTo(w)
}
