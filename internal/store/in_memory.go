package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
)

// InMemory implements Store over an ordered slice of products and a map of users.
type InMemory struct {
	mu       sync.RWMutex
	products []Product
	users    map[string]User
}

// NewInMemoryStore creates a store pre-populated with seed.
// Returns an error if the seed repeats a product or user ID.
func NewInMemoryStore(seed Seed) (*InMemory, error) {
	s := &InMemory{
		products: make([]Product, 0, len(seed.Products)),
		users:    make(map[string]User, len(seed.Users)),
	}
	seen := make(map[string]struct{}, len(seed.Products))
	for _, p := range seed.Products {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q in seed", p.ID)
		}
		seen[p.ID] = struct{}{}
		s.products = append(s.products, p)
	}
	for _, u := range seed.Users {
		if _, dup := s.users[u.ID]; dup {
			return nil, fmt.Errorf("duplicate user id %q in seed", u.ID)
		}
		s.users[u.ID] = u
	}
	return s, nil
}

// FindAll returns a copy of every product in insertion order.
func (s *InMemory) FindAll(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), nil
}

// DeleteByID deletes a product by its ID.
func (s *InMemory) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
	if idx < 0 {
		return adminerrors.ErrProductNotFound
	}
	s.products = slices.Delete(s.products, idx, idx+1)
	return nil
}

// FindUserByID retrieves a user by its ID.
func (s *InMemory) FindUserByID(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, adminerrors.ErrUserNotFound
	}
	return &u, nil
}

func (s *InMemory) Ping(ctx context.Context) error {
	return ctx.Err()
}
