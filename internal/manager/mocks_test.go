package manager

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/abgdnv/gocommerce-admin/internal/store"
	"github.com/abgdnv/gocommerce-admin/pkg/messaging"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindAll(ctx context.Context) ([]store.Product, error) {
	args := m.Called(ctx)
	var products []store.Product
	if args.Get(0) != nil {
		products = args.Get(0).([]store.Product)
	}
	return products, args.Error(1)
}

func (m *mockStore) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) FindUserByID(ctx context.Context, id string) (*store.User, error) {
	args := m.Called(ctx, id)
	var user *store.User
	if args.Get(0) != nil {
		user = args.Get(0).(*store.User)
	}
	return user, args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	return m.Called(ctx, event).Error(0)
}

// recordingNavigator keeps every route it was asked to visit.
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *recordingNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func operator(id string) IdentityResolver {
	return IdentityFunc(func(context.Context) (string, bool) { return id, id != "" })
}

var testRoutes = Routes{Fallback: "/admin", Add: "/admin/products/add", Edit: "/admin/products/edit"}

func fruit() []store.Product {
	return []store.Product{
		{ID: "1", Name: "Apple", Price: 10},
		{ID: "2", Name: "banana", Price: 5},
		{ID: "3", Name: "Cherry", Price: 5},
	}
}

func adminUser(id string) *store.User {
	return &store.User{ID: id, Role: store.RoleAdmin}
}

type fixture struct {
	store     *mockStore
	publisher *mockPublisher
	navigator *recordingNavigator
	inbox     *Queue
	session   *Session
}

func newFixture() *fixture {
	f := &fixture{
		store:     new(mockStore),
		publisher: new(mockPublisher),
		navigator: &recordingNavigator{},
		inbox:     &Queue{},
	}
	logger := discardLogger()
	f.session = NewSession(Deps{
		Guard:     NewGuard(f.store, store.RoleAdmin, logger, nil),
		Loader:    NewLoader(f.store, logger, nil),
		Products:  f.store,
		Navigator: f.navigator,
		Notifier:  f.inbox,
		Publisher: f.publisher,
		Logger:    logger,
		Routes:    testRoutes,
	})
	return f
}

// activated returns a fixture whose session is granted and loaded with products.
func activated(products []store.Product) *fixture {
	f := newFixture()
	f.store.On("FindUserByID", mock.Anything, "admin-1").Return(adminUser("admin-1"), nil)
	f.store.On("FindAll", mock.Anything).Return(products, nil).Once()
	f.session.Activate(context.Background(), operator("admin-1"))
	return f
}

func rowIDs(state ViewState) []string {
	out := make([]string, 0, len(state.Rows))
	for _, r := range state.Rows {
		out = append(out, r.Product.ID)
	}
	return out
}

func productIDs(products []store.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
