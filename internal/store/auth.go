package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Houeta/market-map/internal/models"
)

// AuthRecord is the storage record the auth session is persisted under.
const AuthRecord = "market-map-auth"

const avatarBaseURL = "https://ui-avatars.com/api/"

// DefaultProfileImage is the generic avatar shown when nobody is signed in.
var DefaultProfileImage = AvatarURL("User")

// avatarStyle is appended to every generated avatar after the name.
const avatarStyle = "&background=2563eb&color=fff&bold=true"

// AvatarURL builds the generated avatar image for a display name.
// The name comes first and spaces are encoded as %20.
func AvatarURL(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")

	return avatarBaseURL + "?name=" + escaped + avatarStyle
}

// AuthState is a snapshot of the auth session.
type AuthState struct {
	User             *models.User `json:"user"`
	IsAuthenticated  bool         `json:"isAuthenticated"`
	ProfileImage     string       `json:"profileImage"`
	IsInitialLoading bool         `json:"-"`
}

// AuthStore holds the session identity. Everything except the initial loading
// flag survives restarts.
type AuthStore struct {
	mu        sync.RWMutex
	state     AuthState
	record    record[AuthState]
	listeners listeners[AuthState]
	log       *slog.Logger
	// ready is closed while the startup gate is down.
	ready chan struct{}
}

// NewAuthStore restores the session saved under recordName.
func NewAuthStore(ctx context.Context, log *slog.Logger, storage Storage, recordName string) *AuthStore {
	rec := record[AuthState]{name: recordName, storage: storage, log: log}

	state, ok := rec.load(ctx)
	if !ok {
		state = AuthState{ProfileImage: DefaultProfileImage}
	}
	// A session is authenticated iff a user is present.
	state.IsAuthenticated = state.User != nil
	if state.ProfileImage == "" {
		state.ProfileImage = DefaultProfileImage
	}
	state.IsInitialLoading = true

	return &AuthStore{state: state, record: rec, log: log, ready: make(chan struct{})}
}

// State returns a copy of the current session.
func (a *AuthStore) State() AuthState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.snapshot()
}

// User returns the signed in user or nil.
func (a *AuthStore) User() *models.User {
	return a.State().User
}

// IsAuthenticated reports whether a user is signed in.
func (a *AuthStore) IsAuthenticated() bool {
	return a.State().IsAuthenticated
}

// ProfileImage returns the current avatar reference.
func (a *AuthStore) ProfileImage() string {
	return a.State().ProfileImage
}

// IsInitialLoading reports whether the startup gate is still up.
func (a *AuthStore) IsInitialLoading() bool {
	return a.State().IsInitialLoading
}

// WaitInitialLoading blocks until the startup gate is down or ctx is done.
func (a *AuthStore) WaitInitialLoading(ctx context.Context) error {
	a.mu.RLock()
	ready := a.ready
	a.mu.RUnlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("store.WaitInitialLoading: %w", ctx.Err())
	}
}

// Subscribe registers fn to be called with the new state after every change.
func (a *AuthStore) Subscribe(fn func(AuthState)) (unsubscribe func()) {
	return a.listeners.add(fn)
}

// Login signs user in and derives the avatar from the user's name.
func (a *AuthStore) Login(ctx context.Context, user models.User) {
	a.update(ctx, true, func(s *AuthState) {
		s.User = &user
		s.IsAuthenticated = true
		s.ProfileImage = AvatarURL(user.Name)
	})
	a.log.InfoContext(ctx, "User logged in", "user_id", user.ID)
}

// Logout clears the session and resets the avatar.
func (a *AuthStore) Logout(ctx context.Context) {
	a.update(ctx, true, func(s *AuthState) {
		s.User = nil
		s.IsAuthenticated = false
		s.ProfileImage = DefaultProfileImage
	})
	a.log.InfoContext(ctx, "User logged out")
}

// SetProfileImage overwrites the avatar reference.
func (a *AuthStore) SetProfileImage(ctx context.Context, imageURL string) {
	a.update(ctx, true, func(s *AuthState) {
		s.ProfileImage = imageURL
	})
}

// SetInitialLoading toggles the startup gate. It is never persisted.
func (a *AuthStore) SetInitialLoading(loading bool) {
	a.update(context.Background(), false, func(s *AuthState) {
		s.IsInitialLoading = loading
	})
}

// StartInitialLoadingGate lowers the startup gate once delay elapses.
// The returned function cancels the timer if it has not fired yet.
func (a *AuthStore) StartInitialLoadingGate(delay time.Duration) (stop func() bool) {
	timer := time.AfterFunc(delay, func() {
		a.SetInitialLoading(false)
	})

	return timer.Stop
}

func (a *AuthStore) update(ctx context.Context, persist bool, mutate func(*AuthState)) {
	a.mu.Lock()
	mutate(&a.state)
	a.syncReadyLocked()
	snap := a.snapshot()
	if persist {
		a.record.save(ctx, snap)
	}
	a.mu.Unlock()

	a.listeners.notify(snap)
}

// syncReadyLocked opens or closes ready to follow the loading flag. Callers hold mu.
func (a *AuthStore) syncReadyLocked() {
	select {
	case <-a.ready:
		if a.state.IsInitialLoading {
			a.ready = make(chan struct{})
		}
	default:
		if !a.state.IsInitialLoading {
			close(a.ready)
		}
	}
}

// snapshot copies the state so callers never share the user pointer. Callers hold mu.
func (a *AuthStore) snapshot() AuthState {
	snap := a.state
	if a.state.User != nil {
		user := *a.state.User
		snap.User = &user
	}

	return snap
}
