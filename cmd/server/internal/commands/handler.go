package commands

import (
	"fmt"
	"net/http"

	"filippo.io/csrf"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/logger"
)

type handlerConfig struct {
	CORSOrigins []string

	// CrossOriginProtection rejects cross-origin state changing requests.
	// Enabled when the session travels in a cookie.
	CrossOriginProtection bool

	Tracing bool
}

// buildHandler wraps the API handler with the middleware shared by every route.
func buildHandler(log zerolog.Logger, api http.Handler, cfg handlerConfig) (http.Handler, error) {
	var handler http.Handler = gzhttp.GzipHandler(api)

	if cfg.CrossOriginProtection {
		protection := csrf.New()
		for _, origin := range cfg.CORSOrigins {
			if err := protection.AddTrustedOrigin(origin); err != nil {
				return nil, fmt.Errorf("invalid trusted origin %q: %w", origin, err)
			}
		}
		handler = protection.Handler(handler)
	}

	handler = withCORS(cfg.CORSOrigins, handler)
	handler = logger.RequestLogger(log)(handler)
	handler = httpmiddleware.ClientIPMiddleware()(handler)

	if cfg.Tracing {
		handler = otelhttp.NewHandler(handler, "tasktracker")
	}

	return handler, nil
}

// withCORS adds CORS support for browser clients.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true, // Required for cookie-based authentication
	})
	return middleware.Handler(h)
}
