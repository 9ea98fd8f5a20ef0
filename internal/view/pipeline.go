// Package view derives the visible page of the catalog from the loaded
// collection: sort, then filter by name, then paginate.
package view

import (
	"github.com/abgdnv/gocommerce-admin/internal/store"
)

// Input is everything the pipeline depends on.
type Input struct {
	Products []store.Product
	Query    string
	Sort     SortSpec
	Page     int
}

// Row is a visible product with its 1-based position in the filtered list.
type Row struct {
	Ordinal int           `json:"ordinal"`
	Product store.Product `json:"product"`
}

// Result is one computed page.
type Result struct {
	Rows       []Row `json:"rows"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int   `json:"total"`
}

func (r Result) HasPrevious() bool { return r.Page > 1 }

func (r Result) HasNext() bool { return r.Page < r.TotalPages }

// Apply runs the pipeline. The requested page is clamped to the pages the
// filtered list actually has, so shrinking the list never yields a dangling empty page.
// in.Products is never modified.
func Apply(in Input) Result {
	filtered := Filter(Sort(in.Products, in.Sort), in.Query)
	total := len(filtered)
	totalPages := TotalPages(total)
	page := Clamp(in.Page, totalPages)

	start, end := Window(page, total)
	rows := make([]Row, 0, end-start)
	for i, p := range filtered[start:end] {
		rows = append(rows, Row{Ordinal: start + i + 1, Product: p})
	}
	return Result{
		Rows:       rows,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}
