package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// MessageResponse is the body of every error response and of responses that
// only carry a status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v as the JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteMessage writes {"message": msg} with the given status code.
func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, MessageResponse{Message: msg})
}
