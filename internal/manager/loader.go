package manager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/gocommerce-admin/internal/metrics"
	"github.com/abgdnv/gocommerce-admin/internal/store"
)

// Loader fetches the whole product collection.
type Loader struct {
	products store.ProductStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewLoader(products store.ProductStore, logger *slog.Logger, m *metrics.Metrics) *Loader {
	return &Loader{
		products: products,
		logger:   logger.With("component", "loader"),
		metrics:  m,
	}
}

// Load returns the collection in store order. Records repeating an already seen ID are dropped.
func (l *Loader) Load(ctx context.Context) ([]store.Product, error) {
	start := time.Now()
	products, err := l.products.FindAll(ctx)
	if err != nil {
		l.metrics.CollectionLoaded("failure", time.Since(start))
		return nil, fmt.Errorf("fetch %s: %w", store.CollectionProducts, err)
	}
	l.metrics.CollectionLoaded("success", time.Since(start))

	seen := make(map[string]struct{}, len(products))
	out := make([]store.Product, 0, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			l.logger.WarnContext(ctx, "dropping duplicate product", "product_id", p.ID)
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
