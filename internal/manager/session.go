// Package manager drives one operator's catalog view: access check, collection
// load, search/sort/page state and row deletion.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/internal/metrics"
	"github.com/abgdnv/gocommerce-admin/internal/store"
	"github.com/abgdnv/gocommerce-admin/internal/view"
	"github.com/abgdnv/gocommerce-admin/pkg/messaging"
)

type AuthState string

const (
	AuthPending AuthState = "pending"
	AuthGranted AuthState = "granted"
	AuthDenied  AuthState = "denied"
)

// Routes are the navigation targets of the catalog page.
type Routes struct {
	Fallback string
	Add      string
	// Edit is joined with the product ID, e.g. "/admin/products/edit" + "/" + id.
	Edit string
}

func (r Routes) editPath(id string) string {
	return strings.TrimSuffix(r.Edit, "/") + "/" + id
}

// Deps are the collaborators of a Session.
type Deps struct {
	Guard     *Guard
	Loader    *Loader
	Products  store.ProductStore
	Navigator Navigator
	Notifier  Notifier
	Publisher messaging.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Routes    Routes
}

// Session holds the UI state of one catalog view. All methods are safe for concurrent use;
// store calls run without the lock held.
type Session struct {
	deps   Deps
	logger *slog.Logger

	mu         sync.Mutex
	activated  bool
	alive      bool
	auth       AuthState
	operatorID string
	loading    bool
	loadFailed bool
	raw        []store.Product
	query      string
	sort       view.SortSpec
	page       int
	busyID     string
}

func NewSession(deps Deps) *Session {
	if deps.Publisher == nil {
		deps.Publisher = messaging.NopPublisher{}
	}
	return &Session{
		deps:   deps,
		logger: deps.Logger.With("component", "session"),
		alive:  true,
		auth:   AuthPending,
		page:   1,
	}
}

// Activate runs the access check and, when granted, the collection load.
// Only the first call does anything; later calls return the first decision's state.
func (s *Session) Activate(ctx context.Context, identity IdentityResolver) Decision {
	s.mu.Lock()
	if s.activated {
		d := Decision{Granted: s.auth == AuthGranted, OperatorID: s.operatorID}
		s.mu.Unlock()
		return d
	}
	s.activated = true
	s.mu.Unlock()

	decision := s.deps.Guard.Check(ctx, identity)

	s.mu.Lock()
	if !s.alive {
		s.mu.Unlock()
		return decision
	}
	s.operatorID = decision.OperatorID
	if !decision.Granted {
		s.auth = AuthDenied
		s.mu.Unlock()
		s.deps.Navigator.Navigate(s.deps.Routes.Fallback)
		return decision
	}
	s.auth = AuthGranted
	s.mu.Unlock()

	s.load(ctx)
	return decision
}

func (s *Session) load(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	products, err := s.deps.Loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load products", "error", err)
		s.loadFailed = true
		s.raw = nil
		return
	}
	s.loadFailed = false
	s.raw = products
	s.reclampLocked()
}

// OperatorID returns the operator resolved at activation.
func (s *Session) OperatorID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operatorID
}

// Alive reports whether the session has not been closed.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// Close marks the session dead. Operations still in flight complete without touching its state.
func (s *Session) Close() {
	s.mu.Lock()
	s.alive = false
	s.mu.Unlock()
}

// SetQuery replaces the search query.
func (s *Session) SetQuery(query string) error {
	return s.mutate(func() {
		s.query = query
	})
}

// ToggleSort applies the sort toggle for key.
func (s *Session) ToggleSort(key view.SortKey) error {
	return s.mutate(func() {
		s.sort = view.Toggle(s.sort, key)
	})
}

// NextPage moves forward one page; ignored on the last page.
func (s *Session) NextPage() error {
	return s.mutate(func() {
		s.page = view.Next(s.page, s.resultLocked().TotalPages)
	})
}

// PreviousPage moves back one page; ignored on the first page.
func (s *Session) PreviousPage() error {
	return s.mutate(func() {
		s.page = view.Previous(s.page)
	})
}

// AddProduct navigates to the product creation page.
func (s *Session) AddProduct() error {
	if err := s.mutate(func() {}); err != nil {
		return err
	}
	s.deps.Navigator.Navigate(s.deps.Routes.Add)
	return nil
}

// EditProduct navigates to the edit page of id.
func (s *Session) EditProduct(id string) error {
	if err := s.mutate(func() {}); err != nil {
		return err
	}
	s.deps.Navigator.Navigate(s.deps.Routes.editPath(id))
	return nil
}

// mutate applies fn to a granted, live session and re-clamps the page afterwards.
func (s *Session) mutate(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return err
	}
	fn()
	s.reclampLocked()
	return nil
}

func (s *Session) usableLocked() error {
	if !s.alive {
		return adminerrors.ErrSessionClosed
	}
	if s.auth != AuthGranted {
		return fmt.Errorf("%w: authorization is %s", adminerrors.ErrNotAuthorized, s.auth)
	}
	return nil
}

func (s *Session) resultLocked() view.Result {
	return view.Apply(view.Input{
		Products: s.raw,
		Query:    s.query,
		Sort:     s.sort,
		Page:     s.page,
	})
}

func (s *Session) reclampLocked() {
	s.page = s.resultLocked().Page
}
