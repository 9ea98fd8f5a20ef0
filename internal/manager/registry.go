package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/internal/metrics"
	"github.com/abgdnv/gocommerce-admin/internal/store"
	"github.com/abgdnv/gocommerce-admin/pkg/messaging"
	"github.com/google/uuid"
)

// Entry is a registered session with its notification inbox and pending navigation.
type Entry struct {
	ID      uuid.UUID
	Session *Session
	Inbox   *Queue
	Routes  *RouteRecorder

	lastSeen time.Time
}

// DeniedError is returned by Registry.Open when the access guard refused the operator.
type DeniedError struct {
	Decision Decision
	Redirect string
}

func (e *DeniedError) Error() string {
	return e.Decision.Err.Error()
}

func (e *DeniedError) Unwrap() error {
	return e.Decision.Err
}

// RegistryConfig carries what every new session shares.
type RegistryConfig struct {
	Store     store.Store
	Publisher messaging.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Role      string
	Routes    Routes
	TTL       time.Duration
}

// Registry owns the live sessions keyed by ID.
type Registry struct {
	cfg    RegistryConfig
	guard  *Guard
	loader *Loader
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]*Entry
}

func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		cfg:     cfg,
		guard:   NewGuard(cfg.Store, cfg.Role, cfg.Logger, cfg.Metrics),
		loader:  NewLoader(cfg.Store, cfg.Logger, cfg.Metrics),
		logger:  cfg.Logger.With("component", "registry"),
		now:     time.Now,
		entries: make(map[uuid.UUID]*Entry),
	}
}

// Open creates a session for the operator behind identity and activates it.
// A denied operator gets a *DeniedError naming the fallback route and no session is kept.
func (r *Registry) Open(ctx context.Context, identity IdentityResolver) (*Entry, error) {
	entry := &Entry{
		ID:     uuid.New(),
		Inbox:  &Queue{},
		Routes: &RouteRecorder{},
	}
	entry.Session = NewSession(Deps{
		Guard:     r.guard,
		Loader:    r.loader,
		Products:  r.cfg.Store,
		Navigator: entry.Routes,
		Notifier:  entry.Inbox,
		Publisher: r.cfg.Publisher,
		Metrics:   r.cfg.Metrics,
		Logger:    r.cfg.Logger.With("session_id", entry.ID.String()),
		Routes:    r.cfg.Routes,
	})

	decision := entry.Session.Activate(ctx, identity)
	if !decision.Granted {
		entry.Session.Close()
		redirect, _ := entry.Routes.Take()
		return nil, &DeniedError{Decision: decision, Redirect: redirect}
	}

	r.mu.Lock()
	entry.lastSeen = r.now()
	r.entries[entry.ID] = entry
	r.mu.Unlock()
	r.cfg.Metrics.SessionOpened()
	r.logger.InfoContext(ctx, "session opened", "session_id", entry.ID.String())
	return entry, nil
}

// Get returns the session id owned by operatorID and refreshes its idle timer.
func (r *Registry) Get(id uuid.UUID, operatorID string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", adminerrors.ErrSessionNotFound, id)
	}
	if entry.Session.OperatorID() != operatorID {
		return nil, fmt.Errorf("%w: session %s belongs to another operator", adminerrors.ErrNotAuthorized, id)
	}
	entry.lastSeen = r.now()
	return entry, nil
}

// Close ends the session id owned by operatorID.
func (r *Registry) Close(id uuid.UUID, operatorID string) error {
	entry, err := r.Get(id, operatorID)
	if err != nil {
		return err
	}
	r.remove(entry)
	return nil
}

// Sweep closes sessions idle for longer than the configured TTL and returns how many were closed.
func (r *Registry) Sweep() int {
	if r.cfg.TTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.TTL)
	r.mu.Lock()
	var stale []*Entry
	for _, entry := range r.entries {
		if entry.lastSeen.Before(cutoff) {
			stale = append(stale, entry)
		}
	}
	r.mu.Unlock()

	for _, entry := range stale {
		r.remove(entry)
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll ends every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.mu.Unlock()
	for _, entry := range entries {
		r.remove(entry)
	}
}

func (r *Registry) remove(entry *Entry) {
	r.mu.Lock()
	_, ok := r.entries[entry.ID]
	delete(r.entries, entry.ID)
	r.mu.Unlock()
	entry.Session.Close()
	if ok {
		r.cfg.Metrics.SessionClosed()
	}
}
