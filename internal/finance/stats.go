package finance

import (
	"github.com/shopspring/decimal"

	"moving_ops/internal/models"
)

const (
	StatRevenue   = "revenue"
	StatExpenses  = "expenses"
	StatNetProfit = "net_profit"
	StatPending   = "pending"
)

// StatBlock is one figure of the finance overview.
type StatBlock struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Totals holds the realized and outstanding sums of a transaction set.
type Totals struct {
	Revenue      float64 `json:"revenue"`
	Expenses     float64 `json:"expenses"`
	Pending      float64 `json:"pending"`
	RevenueCount int     `json:"revenue_count"`
	ExpenseCount int     `json:"expense_count"`
	PendingCount int     `json:"pending_count"`
}

func (t Totals) NetProfit() float64 {
	return decimal.NewFromFloat(t.Revenue).Sub(decimal.NewFromFloat(t.Expenses)).InexactFloat64()
}

// Sum reduces transactions into totals. Pending entries never count as
// revenue or expense.
func Sum(txs []models.Transaction) Totals {
	var t Totals
	revenue, expenses, pending := decimal.Zero, decimal.Zero, decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch models.TransactionStatus(tx.Status) {
		case models.TxCompleted:
			switch models.TransactionType(tx.Type) {
			case models.Income:
				revenue = revenue.Add(amount)
				t.RevenueCount++
			case models.Expense:
				expenses = expenses.Add(amount)
				t.ExpenseCount++
			}
		case models.TxPending:
			pending = pending.Add(amount)
			t.PendingCount++
		}
	}
	t.Revenue = revenue.InexactFloat64()
	t.Expenses = expenses.InexactFloat64()
	t.Pending = pending.InexactFloat64()
	return t
}

// CalculatePeriodStats returns the revenue, expenses, net profit and pending
// blocks for a transaction set.
func CalculatePeriodStats(txs []models.Transaction) []StatBlock {
	t := Sum(txs)
	return []StatBlock{
		{Key: StatRevenue, Value: t.Revenue, Count: t.RevenueCount},
		{Key: StatExpenses, Value: t.Expenses, Count: t.ExpenseCount},
		{Key: StatNetProfit, Value: t.NetProfit(), Count: t.RevenueCount + t.ExpenseCount},
		{Key: StatPending, Value: t.Pending, Count: t.PendingCount},
	}
}

// Block returns the block with the given key.
func Block(blocks []StatBlock, key string) (StatBlock, bool) {
	for _, b := range blocks {
		if b.Key == key {
			return b, true
		}
	}
	return StatBlock{}, false
}
