package view

import (
	"strings"

	"github.com/abgdnv/gocommerce-admin/internal/store"
)

// Filter keeps the products whose name contains query, ignoring case.
// An empty query keeps everything.
func Filter(products []store.Product, query string) []store.Product {
	if query == "" {
		return products
	}
	needle := strings.ToLower(query)
	out := make([]store.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
