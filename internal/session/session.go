package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Houeta/market-map/internal/models"
	"github.com/Houeta/market-map/internal/services/home"
	"github.com/Houeta/market-map/internal/services/modal"
	"github.com/Houeta/market-map/internal/store"
)

// Client is the subset of the price service a session talks to.
type Client interface {
	home.ProductLister
	modal.StatsFetcher
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, email, password string) error
}

// Storage is the durable record storage sessions are persisted in.
type Storage interface {
	store.Storage
	DeleteRecord(ctx context.Context, name string) error
}

// Session is the complete client state of one front-end user.
type Session struct {
	Auth      *store.AuthStore
	Watchlist *store.WatchlistStore
	Search    *store.SearchStore
	Nav       *store.NavStore
	Home      *home.Home
	Modal     *modal.Modal

	client   Client
	release  []func()
	stopGate func() bool
}

// SignIn authenticates against the price service and stores the user on success.
func (s *Session) SignIn(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("session.SignIn: %w", err)
	}
	s.Auth.Login(ctx, user)

	return user, nil
}

// SignUp registers a new account. The user still has to sign in afterwards.
func (s *Session) SignUp(ctx context.Context, email, password string) error {
	if err := s.client.Register(ctx, email, password); err != nil {
		return fmt.Errorf("session.SignUp: %w", err)
	}

	return nil
}

// SignOut clears the identity and closes whatever was open.
func (s *Session) SignOut(ctx context.Context) {
	s.Modal.Close()
	s.Nav.CloseSidebar()
	s.Auth.Logout(ctx)
}

func (s *Session) close() {
	if s.stopGate != nil {
		s.stopGate()
	}
	for _, fn := range s.release {
		fn()
	}
}

// Manager creates and caches one Session per front-end user.
type Manager struct {
	ctx          context.Context
	log          *slog.Logger
	storage      Storage
	client       Client
	startupDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager. ctx bounds the fetches triggered by store subscriptions.
func NewManager(
	ctx context.Context,
	log *slog.Logger,
	storage Storage,
	client Client,
	startupDelay time.Duration,
) *Manager {
	return &Manager{
		ctx:          ctx,
		log:          log,
		storage:      storage,
		client:       client,
		startupDelay: startupDelay,
		sessions:     make(map[string]*Session),
	}
}

// RecordName namespaces a persisted record for the user identified by key.
func RecordName(base, key string) string {
	if key == "" {
		return base
	}

	return base + ":" + key
}

// Session returns the session of key, restoring it from storage on first use.
func (m *Manager) Session(ctx context.Context, key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s
	}

	s := m.newSession(ctx, key)
	m.sessions[key] = s

	return s
}

// Reset drops the session of key and deletes its persisted records.
// The next call to Session starts from defaults.
func (m *Manager) Reset(ctx context.Context, key string) error {
	const opn = "session.Reset"

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		s.close()
		delete(m.sessions, key)
	}

	for _, base := range []string{store.AuthRecord, store.WatchlistRecord} {
		name := RecordName(base, key)
		if err := m.storage.DeleteRecord(ctx, name); err != nil {
			return fmt.Errorf("%s: failed to delete %s: %w", opn, name, err)
		}
	}

	m.log.InfoContext(ctx, "Session reset", "session", key)

	return nil
}

// Close stops the timers and subscriptions of every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, s := range m.sessions {
		s.close()
		delete(m.sessions, key)
	}
}

func (m *Manager) newSession(ctx context.Context, key string) *Session {
	log := m.log.With("session", key)

	auth := store.NewAuthStore(ctx, log, m.storage, RecordName(store.AuthRecord, key))
	watchlist := store.NewWatchlistStore(ctx, log, m.storage, RecordName(store.WatchlistRecord, key))
	search := store.NewSearchStore()
	overlay := modal.New(log, m.client)

	s := &Session{
		Auth:      auth,
		Watchlist: watchlist,
		Search:    search,
		Nav:       store.NewNavStore(),
		Home:      home.New(log, m.client, watchlist, search, overlay),
		Modal:     overlay,
		client:    m.client,
	}

	s.release = append(s.release, search.Subscribe(func(string) {
		s.Home.SearchChanged(m.ctx)
	}))

	if m.startupDelay > 0 {
		s.stopGate = auth.StartInitialLoadingGate(m.startupDelay)
	} else {
		auth.SetInitialLoading(false)
	}

	log.InfoContext(ctx, "Session restored", "authenticated", auth.IsAuthenticated(), "watchlist", watchlist.Len())

	return s
}
