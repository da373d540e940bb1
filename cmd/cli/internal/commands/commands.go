package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wolfeidau/tasktracker/cmd/cli/internal/credentials"
	"github.com/wolfeidau/tasktracker/internal/client"
	"github.com/wolfeidau/tasktracker/internal/models"
	"golang.org/x/term"
)

// ErrNotLoggedIn is returned by commands that need a session when there is none.
var ErrNotLoggedIn = errors.New(`not logged in, run "tasktracker login"`)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

type Globals struct {
	Debug      bool
	Version    string
	Server     string
	Transport  string
	SessionDir string

	Stdout io.Writer
	Stdin  io.Reader
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Globals) in() io.Reader {
	if g.Stdin == nil {
		return os.Stdin
	}
	return g.Stdin
}

// session bundles the API client with the saved session store.
type session struct {
	client    *client.Client
	store     *credentials.Store
	saved     *credentials.Session
	server    string
	transport string
}

// openSession creates a client for the configured server and loads any saved
// token for it.
func (g *Globals) openSession() (*session, error) {
	store, err := credentials.NewStore(g.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	config := client.DefaultConfig()
	config.ServerURL = g.Server
	config.Transport = g.Transport
	config.Debug = g.Debug

	saved, err := store.Get(g.Server)
	switch {
	case err == nil:
		// An explicit --transport wins over the one saved at login.
		if config.Transport == "" {
			config.Transport = saved.Transport
		}
	case errors.Is(err, credentials.ErrSessionNotFound):
		saved = nil
	default:
		return nil, err
	}
	if config.Transport == "" {
		config.Transport = client.TransportHeader
	}

	c, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	if saved != nil {
		c.SetToken(saved.Token)
	}

	return &session{
		client:    c,
		store:     store,
		saved:     saved,
		server:    g.Server,
		transport: config.Transport,
	}, nil
}

// authenticated opens the saved session and confirms it with the server.
// It returns ErrNotLoggedIn when there is no usable session.
func (g *Globals) authenticated(ctx context.Context) (*session, error) {
	s, err := g.openSession()
	if err != nil {
		return nil, err
	}

	state := client.NewAuthState(s.client)
	if s.saved == nil {
		state.Logout()
	} else {
		state.Check(ctx)
	}

	if state.State() != client.StateAuthenticated {
		return nil, ErrNotLoggedIn
	}
	return s, nil
}

// save records the client's current token for this server.
func (s *session) save(user models.PublicUser) error {
	return s.store.Save(credentials.Session{
		Server:    s.server,
		Transport: s.transport,
		Token:     s.client.Token(),
		UserID:    user.ID.String(),
		Username:  user.Username,
	})
}

// promptPassword reads a password, without echo when stdin is a terminal.
func (g *Globals) promptPassword() (string, error) {
	fmt.Fprint(g.out(), "Password: ")

	if f, ok := g.in().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(g.out())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(g.in()).ReadString('\n')
	fmt.Fprintln(g.out())
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
