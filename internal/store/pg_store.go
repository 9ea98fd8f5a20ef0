package store

import (
	"context"
	"errors"
	"fmt"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	findAllProductsQuery = `SELECT id, name, description, price, img FROM products ORDER BY created_at, id`
	deleteProductQuery   = `DELETE FROM products WHERE id = $1`
	findUserQuery        = `SELECT id, role FROM users WHERE id = $1`
)

// PgStore implements Store using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of Store using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindAll retrieves all products in insertion order.
func (p *PgStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, findAllProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return adminerrors.ErrProductNotFound
	}
	return nil
}

// FindUserByID retrieves a user by its identifier.
// Returns ErrUserNotFound if no user exists with the given ID.
func (p *PgStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	rows, err := p.db.Query(ctx, findUserQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, adminerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
