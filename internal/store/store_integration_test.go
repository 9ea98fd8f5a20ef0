package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "ADMIN_SVC_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs the postgres adapter against a real database.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("admin_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		if err = s.dbPool.Ping(s.ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	require.NoError(s.T(), Migrate(connStr), "Failed to apply migrations")
	// applying twice must be a no-op
	require.NoError(s.T(), Migrate(connStr))

	s.store = NewPgStore(s.dbPool)
}

func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products, users")
	require.NoError(s.T(), err)
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) insertProduct(p Product, createdAt time.Time) {
	_, err := s.dbPool.Exec(s.ctx,
		"INSERT INTO products (id, name, description, price, img, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		p.ID, p.Name, p.Description, p.Price, p.Img, createdAt)
	s.Require().NoError(err)
}

func (s *PgStoreSuite) TestFindAll_InsertionOrder() {
	// given
	base := time.Now().UTC()
	s.insertProduct(Product{ID: "b", Name: "banana", Price: 5}, base)
	s.insertProduct(Product{ID: "a", Name: "Apple", Price: 10, Img: "https://cdn/a.png"}, base.Add(time.Second))
	s.insertProduct(Product{ID: "c", Name: "Cherry", Description: "sour", Price: 5}, base.Add(2*time.Second))

	// when
	products, err := s.store.FindAll(s.ctx)

	// then
	s.Require().NoError(err)
	s.Equal([]string{"b", "a", "c"}, ids(products))
	s.Equal("https://cdn/a.png", products[1].Img)
	s.Equal("sour", products[2].Description)
}

func (s *PgStoreSuite) TestFindAll_Empty() {
	products, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(products)
}

func (s *PgStoreSuite) TestDeleteByID() {
	// given
	s.insertProduct(Product{ID: "a", Name: "Apple", Price: 10}, time.Now())

	// when
	err := s.store.DeleteByID(s.ctx, "a")

	// then
	s.Require().NoError(err)
	s.ErrorIs(s.store.DeleteByID(s.ctx, "a"), adminerrors.ErrProductNotFound)
	products, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(products)
}

func (s *PgStoreSuite) TestFindUserByID() {
	// given
	_, err := s.dbPool.Exec(s.ctx, "INSERT INTO users (id, role) VALUES ('admin-1', 'admin')")
	s.Require().NoError(err)

	// when
	user, err := s.store.FindUserByID(s.ctx, "admin-1")

	// then
	s.Require().NoError(err)
	s.Equal(RoleAdmin, user.Role)

	_, err = s.store.FindUserByID(s.ctx, "ghost")
	s.ErrorIs(err, adminerrors.ErrUserNotFound)
}

func (s *PgStoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
