package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	adminerrors "github.com/abgdnv/gocommerce-admin/internal/errors"
	"github.com/abgdnv/gocommerce-admin/internal/store"
)

// SortKey names a sortable product field. The zero value leaves the collection in fetch order.
type SortKey string

const (
	SortNone    SortKey = ""
	SortByName  SortKey = "name"
	SortByPrice SortKey = "price"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec is the active sort column and direction.
type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

type comparator func(a, b store.Product) int

var comparators = map[SortKey]comparator{
	SortByName:  func(a, b store.Product) int { return strings.Compare(a.Name, b.Name) },
	SortByPrice: func(a, b store.Product) int { return cmp.Compare(a.Price, b.Price) },
}

// ParseSortKey maps a column name to its SortKey.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(s)
	if _, ok := comparators[key]; !ok {
		return SortNone, fmt.Errorf("%w: %q", adminerrors.ErrUnknownSortKey, s)
	}
	return key, nil
}

// Toggle flips the direction when key is already active and otherwise
// switches to key in ascending order.
func Toggle(spec SortSpec, key SortKey) SortSpec {
	if spec.Key == key && spec.Direction == Ascending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// Indicator returns the arrow shown next to column key, or "" when key is not the active column.
func (s SortSpec) Indicator(key SortKey) string {
	if s.Key == SortNone || s.Key != key {
		return ""
	}
	if s.Direction == Descending {
		return "↓"
	}
	return "↑"
}

// Sort returns a stably sorted copy of products. Descending order inverts the
// comparator, so records with equal keys keep their fetch order either way.
func Sort(products []store.Product, spec SortSpec) []store.Product {
	sorted := slices.Clone(products)
	compare, ok := comparators[spec.Key]
	if !ok {
		return sorted
	}
	if spec.Direction == Descending {
		asc := compare
		compare = func(a, b store.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(sorted, compare)
	return sorted
}
