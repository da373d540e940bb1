package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Response messages written by the gate.
const (
	MessageNoToken      = "No token provided"
	MessageInvalidToken = "Invalid or expired token"
)

// Gate protects handlers so they only run for requests carrying a valid token.
type Gate struct {
	tokens    *TokenService
	transport Transport
}

// NewGate creates a gate reading tokens with transport and validating them with tokens.
func NewGate(tokens *TokenService, transport Transport) *Gate {
	return &Gate{
		tokens:    tokens,
		transport: transport,
	}
}

// Authenticate extracts and validates the request token.
// It returns ErrMissingToken or ErrInvalidToken on failure.
func (g *Gate) Authenticate(r *http.Request) (Identity, error) {
	token, ok := g.transport.Extract(r)
	if !ok {
		return Identity{}, ErrMissingToken
	}
	return g.tokens.Validate(r.Context(), token)
}

// Middleware returns an HTTP middleware that rejects unauthenticated requests
// with 401 and otherwise stores the Identity in the request context.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r)
		if err != nil {
			g.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	reason, msg := "invalid", MessageInvalidToken
	if errors.Is(err, ErrMissingToken) {
		reason, msg = "missing", MessageNoToken
	}

	zerolog.Ctx(r.Context()).Debug().Str("reason", reason).Msg("Rejected unauthenticated request")
	recordRejection(r.Context(), reason)

	httpmiddleware.WriteMessage(w, r, http.StatusUnauthorized, msg)
}

func recordRejection(ctx context.Context, reason string) {
	telemetry.GetMetrics().GateRejectionsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}
