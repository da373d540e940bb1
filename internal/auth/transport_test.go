package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport(TransportHeader, CookieTransport{})
	require.NoError(t, err)
	require.Equal(t, TransportHeader, tr.Name())

	tr, err = NewTransport(TransportCookie, CookieTransport{})
	require.NoError(t, err)
	require.Equal(t, TransportCookie, tr.Name())
	require.Equal(t, DefaultCookieName, tr.(CookieTransport).CookieName)

	_, err = NewTransport("query", CookieTransport{})
	require.Error(t, err)
}

func TestBearerTransport_Extract(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", token: "abc.def.ghi", ok: true},
		{name: "lowercase scheme", header: "bearer abc", token: "abc", ok: true},
		{name: "missing", header: "", ok: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", ok: false},
		{name: "scheme only", header: "Bearer", ok: false},
		{name: "empty token", header: "Bearer   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, ok := BearerTransport{}.Extract(r)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.token, token)
		})
	}

	t.Run("ignores cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "abc"})

		_, ok := BearerTransport{}.Extract(r)
		require.False(t, ok)
	})
}

func TestBearerTransport_Deliver(t *testing.T) {
	w := httptest.NewRecorder()

	body := BearerTransport{}.Deliver(w, "abc", time.Now().Add(time.Hour))
	require.Equal(t, "abc", body)
	require.Empty(t, w.Result().Cookies())
}

func TestCookieTransport(t *testing.T) {
	tr := CookieTransport{CookieName: DefaultCookieName, Secure: true, MaxAge: time.Hour}

	t.Run("deliver sets http only cookie", func(t *testing.T) {
		w := httptest.NewRecorder()

		body := tr.Deliver(w, "abc", time.Now().Add(time.Hour))
		require.Empty(t, body)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		require.Equal(t, "token", c.Name)
		require.Equal(t, "abc", c.Value)
		require.Equal(t, "/", c.Path)
		require.True(t, c.HttpOnly)
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.Equal(t, 3600, c.MaxAge)
	})

	t.Run("extract reads cookie only", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
		token, ok := tr.Extract(r)
		require.True(t, ok)
		require.Equal(t, "abc", token)

		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		_, ok = tr.Extract(r)
		require.False(t, ok)
	})

	t.Run("clear expires cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		tr.Clear(w)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "token", cookies[0].Name)
		require.Empty(t, cookies[0].Value)
		require.Negative(t, cookies[0].MaxAge)
	})
}
