package server

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/tasktracker/internal/auth"
	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// sessionResponse is returned by signup and login. Token is only set when
// the header transport is in use.
type sessionResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
	Token   string            `json:"token,omitempty"`
}

type verifyResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) error {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		return err
	}

	session, err := s.auth.Register(r.Context(), creds)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusCreated, sessionResponse{
		Message: "User created successfully",
		User:    session.User,
		Token:   s.transport.Deliver(w, session.Token, session.ExpiresAt),
	})
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) error {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		return err
	}

	session, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		return err
	}

	zerolog.Ctx(r.Context()).Info().Str("user_id", session.User.ID.String()).Msg("User logged in")

	httpmiddleware.WriteJSON(w, r, http.StatusOK, sessionResponse{
		Message: "Login successful",
		User:    session.User,
		Token:   s.transport.Deliver(w, session.Token, session.ExpiresAt),
	})
	return nil
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) error {
	identity, err := s.gate.Authenticate(r)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, verifyResponse{
		Message: "Token is valid",
		User:    identity.Public(),
	})
	return nil
}

// logout always clears the client side token. When the request carries a
// valid token it is also revoked, if revocation is enabled.
// logout always clears the client session. A failed revocation is logged;
// the token then stays valid until it expires.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) error {
	s.transport.Clear(w)

	if identity, err := s.gate.Authenticate(r); err == nil {
		if err := s.auth.Logout(r.Context(), identity); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", identity.UserID.String()).Msg("Failed to revoke session")
		}
	}

	httpmiddleware.WriteMessage(w, r, http.StatusOK, "Logout successful")
	return nil
}
