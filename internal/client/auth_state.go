package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// State is the client's view of whether it holds a valid session.
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Verifier checks the current session with the server.
type Verifier interface {
	Verify(ctx context.Context) (*models.PublicUser, error)
}

// AuthState owns the authenticated flag.
//
// Only the most recent Check may set the outcome. Login and Logout also
// supersede any outstanding Check.
type AuthState struct {
	verifier Verifier

	mu     sync.Mutex
	state  State
	user   *models.PublicUser
	gen    uint64
	cancel context.CancelFunc
	subs   map[int]chan State
	nextID int
}

// NewAuthState returns an AuthState in StateUnknown.
func NewAuthState(verifier Verifier) *AuthState {
	return &AuthState{
		verifier: verifier,
		subs:     make(map[int]chan State),
	}
}

// State returns the current state.
func (a *AuthState) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Loading reports whether a Check is outstanding.
func (a *AuthState) Loading() bool {
	return a.State() == StateChecking
}

// User returns the authenticated user, if any.
func (a *AuthState) User() (models.PublicUser, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateAuthenticated || a.user == nil {
		return models.PublicUser{}, false
	}
	return *a.user, true
}

// Check verifies the session with the server, cancelling any Check already
// in flight. It blocks until the verify call returns and reports the state
// at that point. A Check that was superseded leaves the state untouched.
func (a *AuthState) Check(ctx context.Context) State {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	gen := a.supersede()
	a.cancel = cancel
	a.setState(StateChecking, nil)
	a.mu.Unlock()

	user, err := a.verifier.Verify(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		log.Debug().Uint64("generation", gen).Msg("Discarding superseded auth check")
		return a.state
	}
	a.cancel = nil

	if err != nil {
		log.Debug().Err(err).Msg("Auth check failed")
		a.setState(StateUnauthenticated, nil)
		return a.state
	}

	a.setState(StateAuthenticated, user)
	return a.state
}

// Login marks the client authenticated as user without contacting the server.
func (a *AuthState) Login(user models.PublicUser) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.supersede()
	a.setState(StateAuthenticated, &user)
}

// Logout marks the client unauthenticated without contacting the server.
func (a *AuthState) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.supersede()
	a.setState(StateUnauthenticated, nil)
}

// Subscribe returns a channel of state transitions and a function to stop
// receiving them. A slow receiver only sees the latest state.
func (a *AuthState) Subscribe() (<-chan State, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan State, 1)
	a.subs[id] = ch

	return ch, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if sub, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(sub)
		}
	}
}

// supersede cancels any outstanding Check and starts a new generation.
// Callers hold a.mu.
func (a *AuthState) supersede() uint64 {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.gen++
	return a.gen
}

// setState records a transition and notifies subscribers. Callers hold a.mu.
func (a *AuthState) setState(state State, user *models.PublicUser) {
	a.user = user
	if a.state == state {
		return
	}
	a.state = state

	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}
