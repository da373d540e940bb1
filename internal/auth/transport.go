package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Transport names accepted by NewTransport.
const (
	TransportHeader = "header"
	TransportCookie = "cookie"
)

// DefaultCookieName is the cookie carrying the session token in cookie mode.
const DefaultCookieName = "token"

// Transport moves session tokens between server and client. A deployment
// uses exactly one transport for issuing and extracting tokens.
type Transport interface {
	// Name returns the transport name, either TransportHeader or TransportCookie.
	Name() string

	// Extract returns the token carried by the request, if any.
	Extract(r *http.Request) (string, bool)

	// Deliver hands a freshly issued token to the client. It returns the
	// token to include in the response body, or "" when the token must not
	// appear there.
	Deliver(w http.ResponseWriter, token string, expiresAt time.Time) string

	// Clear removes any token the transport stored on the client.
	Clear(w http.ResponseWriter)
}

// NewTransport returns the transport named by kind.
func NewTransport(kind string, cookie CookieTransport) (Transport, error) {
	switch kind {
	case TransportHeader, "":
		return BearerTransport{}, nil
	case TransportCookie:
		if cookie.CookieName == "" {
			cookie.CookieName = DefaultCookieName
		}
		return cookie, nil
	default:
		return nil, fmt.Errorf("unknown token transport %q", kind)
	}
}

// BearerTransport returns tokens in the response body and reads them from
// the Authorization header.
type BearerTransport struct{}

func (BearerTransport) Name() string { return TransportHeader }

// Extract reads a token from "Authorization: Bearer <token>".
func (BearerTransport) Extract(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

func (BearerTransport) Deliver(w http.ResponseWriter, token string, expiresAt time.Time) string {
	return token
}

func (BearerTransport) Clear(w http.ResponseWriter) {}

// CookieTransport stores tokens in an http-only cookie so browser scripts
// cannot read them.
type CookieTransport struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

func (CookieTransport) Name() string { return TransportCookie }

// Extract reads the token cookie.
func (c CookieTransport) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Deliver sets the token cookie. The token is never echoed in the body.
func (c CookieTransport) Deliver(w http.ResponseWriter, token string, expiresAt time.Time) string {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = time.Until(expiresAt)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
		Expires:  expiresAt,
	})

	return ""
}

// Clear expires the token cookie.
func (c CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
