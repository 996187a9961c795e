package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/errs"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the generic acknowledgement payload
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a success response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondAppError maps a service error to its HTTP status and safe
// message. Server-side failures get logged here so handlers don't have
// to.
func respondAppError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	respondError(w, errs.Message(err), status)
}

// pathID parses a uuid path parameter into canonical form
func pathID(r *http.Request, name string) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", errs.InvalidArgument("invalid " + name)
	}
	return id.String(), nil
}

// parseID normalizes a uuid carried in a request body field
func parseID(field, value string) (string, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", errs.InvalidArgument("invalid " + field)
	}
	return id.String(), nil
}

// parseIDs normalizes a uuid list carried in a request body field
func parseIDs(field string, values []string) ([]string, error) {
	ids := make([]string, 0, len(values))
	for _, value := range values {
		id, err := parseID(field, value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
