// Package store is the remote store adapter consulted by the admin catalog manager.
package store

import (
	"context"
)

// ProductStore reads and removes catalog records.
type ProductStore interface {
	// FindAll returns every product in the order the store keeps them.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error
}

// UserStore resolves operator accounts.
type UserStore interface {
	// FindUserByID retrieves a single user by its identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindUserByID(ctx context.Context, id string) (*User, error)
}

// Store is the full adapter. Ping reports whether the backend is reachable.
type Store interface {
	ProductStore
	UserStore
	Ping(ctx context.Context) error
}
