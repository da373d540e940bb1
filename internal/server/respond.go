package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/tasktracker/internal/auth"
	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/store"
)

// maxBodyBytes bounds request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

const messageServerError = "Server error"

// handlerFunc is an HTTP handler that reports failures as errors, which
// handle converts to JSON error responses.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// requestError is an error with a status code and a message safe to return
// to the client.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

func (s *Server) handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	})
}

// writeError maps err to a status code and message. Unexpected errors are
// logged and reported as a generic server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorResponse(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	}
	httpmiddleware.WriteMessage(w, r, status, message)
}

func errorResponse(err error) (int, string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status, reqErr.message
	}

	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Reason
	}

	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid Credentials"
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, auth.MessageNoToken
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, auth.MessageInvalidToken
	case errors.Is(err, store.ErrProjectNotFound):
		return http.StatusNotFound, "Project not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	default:
		return http.StatusInternalServerError, messageServerError
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Invalid request body")
		return badRequest("Invalid request body")
	}
	return nil
}

// pathID parses the named path value as a UUID. Malformed ids are reported
// as notFound since no record can have them.
func pathID(r *http.Request, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
