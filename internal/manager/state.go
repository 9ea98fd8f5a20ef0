package manager

import (
	"github.com/abgdnv/gocommerce-admin/internal/store"
	"github.com/abgdnv/gocommerce-admin/internal/view"
)

// RowState is a visible row as presented to the operator.
type RowState struct {
	Ordinal int           `json:"ordinal"`
	Product store.Product `json:"product"`
	Busy    bool          `json:"busy"`
}

// SortIndicators holds the arrow rendered next to each sortable column.
type SortIndicators struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// ViewState is a snapshot of everything the catalog page renders.
// Rows stay empty until access is granted.
type ViewState struct {
	Authorization AuthState      `json:"authorization"`
	Loading       bool           `json:"loading"`
	LoadFailed    bool           `json:"load_failed"`
	Empty         bool           `json:"empty"`
	Query         string         `json:"query"`
	Sort          view.SortSpec  `json:"sort"`
	Indicators    SortIndicators `json:"indicators"`
	Page          int            `json:"page"`
	TotalPages    int            `json:"total_pages"`
	Total         int            `json:"total"`
	HasPrevious   bool           `json:"has_previous"`
	HasNext       bool           `json:"has_next"`
	BusyID        string         `json:"busy_id,omitempty"`
	Rows          []RowState     `json:"rows"`
}

// View computes the current snapshot.
func (s *Session) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := ViewState{
		Authorization: s.auth,
		Loading:       s.loading,
		LoadFailed:    s.loadFailed,
		Query:         s.query,
		Sort:          s.sort,
		Indicators: SortIndicators{
			Name:  s.sort.Indicator(view.SortByName),
			Price: s.sort.Indicator(view.SortByPrice),
		},
		BusyID: s.busyID,
		Rows:   []RowState{},
	}
	if s.auth != AuthGranted {
		state.Page, state.TotalPages, state.Empty = 1, 1, true
		return state
	}

	res := s.resultLocked()
	state.Page = res.Page
	state.TotalPages = res.TotalPages
	state.Total = res.Total
	state.HasPrevious = res.HasPrevious()
	state.HasNext = res.HasNext()
	state.Empty = len(res.Rows) == 0
	for _, r := range res.Rows {
		state.Rows = append(state.Rows, RowState{
			Ordinal: r.Ordinal,
			Product: r.Product,
			Busy:    r.Product.ID == s.busyID,
		})
	}
	return state
}

// Products returns a copy of the loaded collection in fetch order.
func (s *Session) Products() []store.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Product, len(s.raw))
	copy(out, s.raw)
	return out
}

// BusyID returns the product whose delete is in flight, or "".
func (s *Session) BusyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busyID
}
