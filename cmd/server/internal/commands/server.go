package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/tasktracker/internal/auth"
	"github.com/wolfeidau/tasktracker/internal/logger"
	"github.com/wolfeidau/tasktracker/internal/server"
	"github.com/wolfeidau/tasktracker/internal/telemetry"
)

type ServeCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TASKTRACKER_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"TASKTRACKER_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"TASKTRACKER_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:5173" env:"TASKTRACKER_CORS_ORIGINS"`

	// Session configuration
	Transport    string        `help:"how the session token travels (header or cookie)" default:"header" env:"TASKTRACKER_TRANSPORT" enum:"header,cookie"`
	CookieName   string        `help:"session cookie name" default:"token" env:"TASKTRACKER_COOKIE_NAME"`
	CookieSecure string        `help:"mark the session cookie Secure (auto, true or false); auto follows --cert, so set true behind a TLS terminating proxy" default:"auto" env:"TASKTRACKER_COOKIE_SECURE" enum:"auto,true,false"`
	TokenSecret  string        `help:"HMAC secret for signing session tokens" env:"TASKTRACKER_TOKEN_SECRET"`
	TokenTTL     time.Duration `help:"session token lifetime" default:"1h" env:"TASKTRACKER_TOKEN_TTL"`
	BcryptCost   int           `help:"bcrypt cost factor for password hashing" default:"10" env:"TASKTRACKER_BCRYPT_COST"`

	// Revocation configuration
	Revocation string     `help:"where revoked tokens are recorded (none, memory or redis)" default:"memory" env:"TASKTRACKER_REVOCATION" enum:"none,memory,redis"`
	Redis      RedisFlags `embed:"" prefix:"redis-"`
	Stores     StoreFlags `embed:""`

	// Telemetry
	Tracing     bool    `help:"enable tracing" default:"false" env:"TASKTRACKER_TRACING"`
	SampleRatio float64 `help:"fraction of traces sampled" default:"1.0" env:"TASKTRACKER_TRACE_SAMPLE_RATIO"`

	ShutdownTimeout time.Duration `help:"time allowed for in-flight requests on shutdown" default:"10s" env:"TASKTRACKER_SHUTDOWN_TIMEOUT"`
}

type RedisFlags struct {
	Addr      string `help:"Redis address for the revocation denylist" default:"" env:"TASKTRACKER_REDIS_ADDR"`
	Password  string `help:"Redis password" default:"" env:"TASKTRACKER_REDIS_PASSWORD"`
	DB        int    `help:"Redis database number" default:"0" env:"TASKTRACKER_REDIS_DB"`
	KeyPrefix string `help:"key prefix for revoked token ids" default:"tasktracker:revoked" env:"TASKTRACKER_REDIS_KEY_PREFIX"`
}

func (r *RedisFlags) Validate() error {
	if r.Addr == "" {
		return errors.New("Redis address is required when revocation is redis (--redis-addr or TASKTRACKER_REDIS_ADDR)")
	}
	return nil
}

func (c *ServeCmd) validate() error {
	if c.TokenSecret == "" {
		return errors.New("token secret is required (--token-secret or TASKTRACKER_TOKEN_SECRET)")
	}
	if len(c.TokenSecret) < auth.MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes (256 bits) for HMAC-SHA256", auth.MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if (c.Cert == "") != (c.Key == "") {
		return errors.New("TLS certificate and key must be provided together (--cert and --key)")
	}
	if c.Revocation == "redis" {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// secureCookie reports whether the session cookie carries the Secure
// attribute. Browsers drop Secure cookies on plain HTTP, so auto only sets
// it when this process terminates TLS.
func (c *ServeCmd) secureCookie() bool {
	switch c.CookieSecure {
	case "true":
		return true
	case "false":
		return false
	default:
		return c.Cert != ""
	}
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	if err := c.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Float64("sample_ratio", c.SampleRatio).Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "tasktracker-server", globals.Version, c.SampleRatio)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := c.Stores.openStores(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	tokenOpts, closeDenylist, err := c.denylist(ctx, log)
	if err != nil {
		return err
	}
	defer closeDenylist()

	tokens, err := auth.NewTokenService([]byte(c.TokenSecret), c.TokenTTL, tokenOpts...)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	authService, err := auth.NewService(stores.Users, auth.NewBcryptHasher(c.BcryptCost), tokens)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	transport, err := auth.NewTransport(c.Transport, auth.CookieTransport{
		CookieName: c.CookieName,
		Secure:     c.secureCookie(),
		MaxAge:     c.TokenTTL,
	})
	if err != nil {
		return err
	}
	if c.Transport == auth.TransportCookie && !c.secureCookie() {
		log.Warn().Msg("Session cookie is not marked Secure; use --cookie-secure=true when TLS is terminated upstream")
	}

	handler, err := buildHandler(log, server.NewServer(authService, transport, stores).Handler(), handlerConfig{
		CORSOrigins:           c.CORSOrigins,
		CrossOriginProtection: c.Transport == auth.TransportCookie,
		Tracing:               c.Tracing,
	})
	if err != nil {
		return err
	}

	srv := configureHTTPServer(c.Listen, handler)
	return c.serve(ctx, log, srv)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func (c *ServeCmd) serve(ctx context.Context, log zerolog.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", c.Listen).
			Str("transport", c.Transport).
			Bool("tls", c.Cert != "").
			Msg("Starting HTTP server")

		var err error
		if c.Cert != "" {
			err = srv.ListenAndServeTLS(c.Cert, c.Key)
		} else {
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", c.ShutdownTimeout).Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// denylist builds the token revocation backend selected by --revocation.
func (c *ServeCmd) denylist(ctx context.Context, log zerolog.Logger) ([]auth.TokenOption, func(), error) {
	switch c.Revocation {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info().Str("addr", c.Redis.Addr).Msg("Using Redis token denylist")
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close redis client")
			}
		}
		return []auth.TokenOption{auth.WithDenylist(auth.NewRedisDenylist(rdb, c.Redis.KeyPrefix))}, closeFn, nil

	case "memory":
		denylist := auth.NewMemoryDenylist(ctx, time.Minute)
		log.Info().Msg("Using in-memory token denylist")
		return []auth.TokenOption{auth.WithDenylist(denylist)}, denylist.Stop, nil

	default:
		log.Warn().Msg("Token revocation is disabled, logout only clears the client session")
		return nil, func() {}, nil
	}
}
