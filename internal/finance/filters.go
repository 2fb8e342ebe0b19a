package finance

import (
	"strings"

	"moving_ops/internal/models"
)

// PageSize is the number of transactions shown per page.
const PageSize = 10

const All = "all"

// Filters narrows a transaction list. Empty values behave like "all".
type Filters struct {
	Type   string `json:"type" form:"type"`
	Status string `json:"status" form:"status"`
	Search string `json:"search" form:"search"`
}

// ApplyTransactionFilters keeps transactions matching type, status and a
// case-insensitive search on description or order reference.
func ApplyTransactionFilters(txs []models.Transaction, f Filters) []models.Transaction {
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matches(f.Type, tx.Type) || !matches(f.Status, tx.Status) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(tx.Description), query) &&
			!strings.Contains(strings.ToLower(tx.OrderRef), query) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matches(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}

// TotalPages returns ceil(n / size).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// FilterState tracks the active filters and page of a transaction list.
// Every filter change moves back to the first page.
type FilterState struct {
	Filters     Filters `json:"filters"`
	CurrentPage int     `json:"current_page"`
}

func NewFilterState() *FilterState {
	return &FilterState{
		Filters:     Filters{Type: All, Status: All},
		CurrentPage: 1,
	}
}

func (s *FilterState) SetType(v string) {
	s.Filters.Type = v
	s.CurrentPage = 1
}

func (s *FilterState) SetStatus(v string) {
	s.Filters.Status = v
	s.CurrentPage = 1
}

func (s *FilterState) SetSearch(v string) {
	s.Filters.Search = v
	s.CurrentPage = 1
}

// SetFilters replaces all filters at once.
func (s *FilterState) SetFilters(f Filters) {
	s.Filters = f
	s.CurrentPage = 1
}

// SetPage moves to page p. Out of range values are clamped when the list is
// paged.
func (s *FilterState) SetPage(p int) {
	s.CurrentPage = p
}

// Page is one page of a filtered transaction list.
type Page struct {
	Items       []models.Transaction `json:"items"`
	Filtered    int                  `json:"filtered"`
	TotalPages  int                  `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
	PageSize    int                  `json:"page_size"`
}

// Apply filters txs and returns the current page, clamping CurrentPage into
// the valid range.
func (s *FilterState) Apply(txs []models.Transaction) Page {
	filtered := ApplyTransactionFilters(txs, s.Filters)
	total := TotalPages(len(filtered), PageSize)

	if s.CurrentPage > total {
		s.CurrentPage = total
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}

	start := (s.CurrentPage - 1) * PageSize
	end := start + PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:       filtered[start:end],
		Filtered:    len(filtered),
		TotalPages:  total,
		CurrentPage: s.CurrentPage,
		PageSize:    PageSize,
	}
}
