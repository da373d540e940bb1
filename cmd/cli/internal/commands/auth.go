package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/tasktracker/internal/client"
)

// SignupCmd registers a new user and saves the session.
type SignupCmd struct {
	Username string `arg:"" help:"username to register"`
	Password string `help:"password (prompted when empty)" env:"TASKTRACKER_PASSWORD"`
}

func (c *SignupCmd) Run(ctx context.Context, globals *Globals) error {
	return startSession(ctx, globals, c.Username, c.Password, (*client.Client).Signup)
}

// LoginCmd authenticates and saves the session.
type LoginCmd struct {
	Username string `arg:"" help:"username"`
	Password string `help:"password (prompted when empty)" env:"TASKTRACKER_PASSWORD"`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	return startSession(ctx, globals, c.Username, c.Password, (*client.Client).Login)
}

type sessionFunc func(c *client.Client, ctx context.Context, username, password string) (*client.Session, error)

func startSession(ctx context.Context, globals *Globals, username, password string, start sessionFunc) error {
	s, err := globals.openSession()
	if err != nil {
		return err
	}

	if password == "" {
		password, err = globals.promptPassword()
		if err != nil {
			return err
		}
	}

	result, err := start(s.client, ctx, username, password)
	if err != nil {
		return err
	}

	if err := s.save(result.User); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(globals.out(), "%s, logged in as %s\n", result.Message, result.User.Username)
	return nil
}

// LogoutCmd ends the session on the server and forgets it locally.
type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.openSession()
	if err != nil {
		return err
	}

	if s.saved == nil {
		fmt.Fprintln(globals.out(), "Not logged in")
		return nil
	}

	// The local session is removed even if the server cannot be reached.
	serverErr := s.client.Logout(ctx)

	if err := s.store.Delete(s.server); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if serverErr != nil {
		fmt.Fprintf(globals.out(), "Logged out locally, server logout failed: %v\n", serverErr)
		return nil
	}

	fmt.Fprintln(globals.out(), "Logout successful")
	return nil
}

// WhoamiCmd shows the user of the saved session.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.openSession()
	if err != nil {
		return err
	}

	state := client.NewAuthState(s.client)
	if s.saved == nil {
		return ErrNotLoggedIn
	}
	if state.Check(ctx) != client.StateAuthenticated {
		return ErrNotLoggedIn
	}

	user, _ := state.User()
	fmt.Fprintf(globals.out(), "%s (%s) on %s\n", user.Username, user.ID, s.server)
	return nil
}
