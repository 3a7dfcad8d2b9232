package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/itinerary/backend/internal/domain"
)

// ErrorDetail is the machine-readable part of an error body.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "waypoint not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err, domain.ErrValidation)}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}

// conflictBody returns an ErrorResponse for a command the editor cannot
// accept in its current state.
func conflictBody(err error) ErrorResponse {
	code := "invalid_transition"
	sentinel := domain.ErrInvalidTransition
	if errors.Is(err, domain.ErrEditorBusy) {
		code = "editor_busy"
		sentinel = domain.ErrEditorBusy
	}
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: unwrapMessage(err, sentinel)}}
}

// catalogMissBody returns an ErrorResponse for a value with no catalog entry.
func catalogMissBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "catalog_miss", Message: unwrapMessage(err, domain.ErrCatalogMiss)}}
}

// unwrapMessage extracts the human-readable part after the sentinel from a
// wrapped error.
// e.g. "service.TripService.Submit: validation error: price must not be negative" → "price must not be negative"
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// writeServiceError maps a service error onto the HTTP status it stands for.
// Unknown errors are logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(what+" not found"))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrEditorBusy), errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, conflictBody(err))
	case errors.Is(err, domain.ErrCatalogMiss):
		writeJSON(w, http.StatusUnprocessableEntity, catalogMissBody(err))
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "internal", Message: "internal server error"}})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

// writeDecodeError answers a body decode failure: 413 when the body limit
// was hit, 400 otherwise.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{Code: "too_large", Message: err.Error()}})
		return
	}
	writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
}
