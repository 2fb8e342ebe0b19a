package orders

import (
	"moving_ops/internal/models"
	"moving_ops/internal/status"
)

// Stats counts orders per canonical status.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	InProgress    int `json:"in_progress"`
	PartiallyDone int `json:"partially_done"`
	Completed     int `json:"completed"`
	Cancelled     int `json:"cancelled"`
}

// CountByStatus counts orders whose status equals s.
func CountByStatus(list []models.Order, s status.Canonical) int {
	n := 0
	for _, o := range list {
		if o.Status == string(s) {
			n++
		}
	}
	return n
}

func Aggregate(list []models.Order) Stats {
	return Stats{
		Total:         len(list),
		Pending:       CountByStatus(list, status.Pending),
		InProgress:    CountByStatus(list, status.InProgress),
		PartiallyDone: CountByStatus(list, status.PartiallyDone),
		Completed:     CountByStatus(list, status.Completed),
		Cancelled:     CountByStatus(list, status.Cancelled),
	}
}

// FilterByStatus keeps orders matching a UI or canonical status filter.
// "all" and the empty string keep everything.
func FilterByStatus(list []models.Order, filter string) []models.Order {
	if filter == "" || filter == "all" {
		return list
	}
	want := status.MapToBackend(filter)
	out := make([]models.Order, 0, len(list))
	for _, o := range list {
		if o.Status == string(want) {
			out = append(out, o)
		}
	}
	return out
}
