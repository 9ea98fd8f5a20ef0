package store

import (
	"context"
	"strings"
	"testing"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSeed = `
users:
  - id: admin-1
    role: admin
  - id: shopper-1
    role: customer
products:
  - id: "1"
    name: Apple
    price: 10
  - id: "2"
    name: banana
    price: 5
    img: https://cdn.example.com/banana.png
  - id: "3"
    name: Cherry
    description: sour
    price: 5
`

func newSeededStore(t *testing.T) *InMemory {
	t.Helper()
	seed, err := LoadSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)
	s, err := NewInMemoryStore(seed)
	require.NoError(t, err)
	return s
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestInMemory_FindAllPreservesOrder(t *testing.T) {
	// given
	s := newSeededStore(t)

	// when
	products, err := s.FindAll(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(products))
}

func TestInMemory_FindAllReturnsCopy(t *testing.T) {
	// given
	s := newSeededStore(t)
	products, err := s.FindAll(context.Background())
	require.NoError(t, err)

	// when
	products[0].Name = "mutated"

	// then
	again, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Apple", again[0].Name)
}

func TestInMemory_DeleteByID(t *testing.T) {
	testCases := []struct {
		name        string
		id          string
		expectedErr error
		expectedIDs []string
	}{
		{name: "existing product", id: "2", expectedIDs: []string{"1", "3"}},
		{name: "missing product", id: "42", expectedErr: adminerrors.ErrProductNotFound, expectedIDs: []string{"1", "2", "3"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := newSeededStore(t)

			// when
			err := s.DeleteByID(context.Background(), tc.id)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			products, err := s.FindAll(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIDs, ids(products))
		})
	}
}

func TestInMemory_FindUserByID(t *testing.T) {
	s := newSeededStore(t)

	user, err := s.FindUserByID(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)

	_, err = s.FindUserByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, adminerrors.ErrUserNotFound)
}

func TestInMemory_CanceledContext(t *testing.T) {
	s := newSeededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}

func TestNewInMemoryStore_RejectsDuplicates(t *testing.T) {
	_, err := NewInMemoryStore(Seed{Products: []Product{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}}})
	assert.Error(t, err)

	_, err = NewInMemoryStore(Seed{Users: []User{{ID: "u", Role: "admin"}, {ID: "u", Role: "x"}}})
	assert.Error(t, err)
}

func TestLoadSeed(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "empty document", doc: ""},
		{name: "unknown field", doc: "products:\n  - id: x\n    name: y\n    stock: 3\n", wantErr: true},
		{name: "negative price", doc: "products:\n  - id: x\n    name: y\n    price: -1\n", wantErr: true},
		{name: "missing name", doc: "products:\n  - id: x\n", wantErr: true},
		{name: "user without role", doc: "users:\n  - id: u\n", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadSeed(strings.NewReader(tc.doc))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadSeedFile_EmptyPath(t *testing.T) {
	seed, err := LoadSeedFile("")
	require.NoError(t, err)
	assert.Empty(t, seed.Products)
}
