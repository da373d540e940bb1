package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// blockingVerifier holds each Verify call until the test releases it.
type blockingVerifier struct {
	mu      sync.Mutex
	calls   []chan error
	started chan struct{}
	user    models.PublicUser
}

func newBlockingVerifier() *blockingVerifier {
	return &blockingVerifier{
		started: make(chan struct{}, 8),
		user:    models.PublicUser{ID: uuid.New(), Username: "ada"},
	}
}

func (v *blockingVerifier) Verify(ctx context.Context) (*models.PublicUser, error) {
	release := make(chan error, 1)
	v.mu.Lock()
	v.calls = append(v.calls, release)
	v.mu.Unlock()
	v.started <- struct{}{}

	select {
	case err := <-release:
		if err != nil {
			return nil, err
		}
		user := v.user
		return &user, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (v *blockingVerifier) release(i int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls[i] <- err
}

type verifierFunc func(ctx context.Context) (*models.PublicUser, error)

func (f verifierFunc) Verify(ctx context.Context) (*models.PublicUser, error) {
	return f(ctx)
}

func TestAuthState_Check(t *testing.T) {
	user := models.PublicUser{ID: uuid.New(), Username: "ada"}

	tests := []struct {
		name string
		err  error
		want State
	}{
		{name: "valid session", want: StateAuthenticated},
		{name: "unauthorized", err: &APIError{StatusCode: 401, Message: "Invalid or expired token"}, want: StateUnauthenticated},
		{name: "network failure", err: errors.New("connection refused"), want: StateUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewAuthState(verifierFunc(func(context.Context) (*models.PublicUser, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &user, nil
			}))
			require.Equal(t, StateUnknown, state.State())

			require.Equal(t, tt.want, state.Check(context.Background()))
			require.False(t, state.Loading())

			got, ok := state.User()
			require.Equal(t, tt.want == StateAuthenticated, ok)
			if ok {
				require.Equal(t, user, got)
			}
		})
	}
}

func TestAuthState_LoadingWhileChecking(t *testing.T) {
	verifier := newBlockingVerifier()
	state := NewAuthState(verifier)

	done := make(chan State)
	go func() { done <- state.Check(context.Background()) }()

	<-verifier.started
	require.True(t, state.Loading())
	require.Equal(t, StateChecking, state.State())

	verifier.release(0, nil)
	require.Equal(t, StateAuthenticated, <-done)
	require.False(t, state.Loading())
}

func TestAuthState_LatestCheckWins(t *testing.T) {
	verifier := newBlockingVerifier()
	state := NewAuthState(verifier)

	first := make(chan State)
	go func() { first <- state.Check(context.Background()) }()
	<-verifier.started

	second := make(chan State)
	go func() { second <- state.Check(context.Background()) }()
	<-verifier.started

	// The first call was cancelled by the second and must not set the outcome.
	require.Equal(t, StateChecking, <-first)
	require.True(t, state.Loading())

	verifier.release(1, errors.New("boom"))
	require.Equal(t, StateUnauthenticated, <-second)
	require.Equal(t, StateUnauthenticated, state.State())
}

func TestAuthState_LoginSupersedesCheck(t *testing.T) {
	verifier := newBlockingVerifier()
	state := NewAuthState(verifier)

	done := make(chan State)
	go func() { done <- state.Check(context.Background()) }()
	<-verifier.started

	user := models.PublicUser{ID: uuid.New(), Username: "grace"}
	state.Login(user)

	// The cancelled check returns without overwriting the login.
	require.Equal(t, StateAuthenticated, <-done)
	got, ok := state.User()
	require.True(t, ok)
	require.Equal(t, user, got)

	state.Logout()
	require.Equal(t, StateUnauthenticated, state.State())
	_, ok = state.User()
	require.False(t, ok)
}

func TestAuthState_Subscribe(t *testing.T) {
	state := NewAuthState(verifierFunc(func(context.Context) (*models.PublicUser, error) {
		return &models.PublicUser{ID: uuid.New(), Username: "ada"}, nil
	}))

	updates, stop := state.Subscribe()

	state.Logout()
	require.Equal(t, StateUnauthenticated, receive(t, updates))

	state.Login(models.PublicUser{ID: uuid.New(), Username: "ada"})
	require.Equal(t, StateAuthenticated, receive(t, updates))

	// A receiver that falls behind only sees the latest state.
	state.Logout()
	state.Login(models.PublicUser{ID: uuid.New(), Username: "ada"})
	state.Logout()
	require.Equal(t, StateUnauthenticated, receive(t, updates))

	stop()
	_, open := <-updates
	require.False(t, open)

	// Stopping twice is harmless.
	stop()
}

func TestState_String(t *testing.T) {
	require.Equal(t, "unknown", StateUnknown.String())
	require.Equal(t, "checking", StateChecking.String())
	require.Equal(t, "authenticated", StateAuthenticated.String())
	require.Equal(t, "unauthenticated", StateUnauthenticated.String())
}

func receive(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
		return StateUnknown
	}
}
