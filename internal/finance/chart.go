package finance

import (
	"time"

	"moving_ops/internal/models"
)

// ChartPoint is the realized income and expense of one calendar day.
type ChartPoint struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Pending float64 `json:"pending"`
}

// ChartData returns one point per calendar day of the period, oldest first,
// ending on the period's last day. Days without transactions are present with
// zero values. Transactions are bucketed by their date in the location of
// the period's end.
func ChartData(txs []models.Transaction, key Period, custom *DateRange, now time.Time) []ChartPoint {
	days := PeriodDays(key, custom, now)
	_, end := PeriodRange(key, custom, now)

	byDay := make(map[string][]models.Transaction)
	for _, tx := range txs {
		k := DayKey(tx.Date.In(end.Location()))
		byDay[k] = append(byDay[k], tx)
	}

	points := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := DayKey(end.AddDate(0, 0, -i))
		t := Sum(byDay[day])
		points = append(points, ChartPoint{
			Date:    day,
			Income:  t.Revenue,
			Expense: t.Expenses,
			Pending: t.Pending,
		})
	}
	return points
}
