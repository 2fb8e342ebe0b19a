package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moving_ops/internal/apierr"
	"moving_ops/internal/finance"
	"moving_ops/internal/models"
	"moving_ops/internal/repository"

	"github.com/google/uuid"
)

// ReportQuery selects the period, filters and page of a finance report.
type ReportQuery struct {
	Period string `form:"period"`
	Start  string `form:"start"`
	End    string `form:"end"`
	Type   string `form:"type"`
	Status string `form:"status"`
	Search string `form:"search"`
	Page   int    `form:"page"`
}

type Report struct {
	Period  finance.Period       `json:"period"`
	Start   string               `json:"start"`
	End     string               `json:"end"`
	Stats   []finance.StatBlock  `json:"stats"`
	Chart   []finance.ChartPoint `json:"chart"`
	Filters finance.Filters      `json:"filters"`
	Page    finance.Page         `json:"page"`
}

// NewTransaction is the input for recording a ledger entry.
type NewTransaction struct {
	Reference   string  `json:"reference"`
	Date        string  `json:"date"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Type        string  `json:"type" binding:"required,oneof=income expense"`
	Status      string  `json:"status" binding:"omitempty,oneof=completed pending"`
	OrderRef    string  `json:"orderRef"`
	OrderID     *uint   `json:"order_id"`
	Category    string  `json:"category"`
}

type FinanceService interface {
	Report(ctx context.Context, q ReportQuery) (*Report, error)
	CreateTransaction(ctx context.Context, in NewTransaction) (*models.Transaction, error)
}

type financeService struct {
	txRepo repository.TransactionRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewFinanceService(txRepo repository.TransactionRepository, logger *slog.Logger) FinanceService {
	return &financeService{txRepo: txRepo, logger: logger, now: time.Now}
}

func (s *financeService) Report(ctx context.Context, q ReportQuery) (*Report, error) {
	now := s.now()
	period := finance.ParsePeriod(q.Period)

	var custom *finance.DateRange
	if period == finance.PeriodCustom {
		r, err := parseRange(q.Start, q.End, now.Location())
		if err != nil {
			return nil, err
		}
		custom = r
	}

	start, end := finance.PeriodRange(period, custom, now)
	txs, err := s.txRepo.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to load transactions: %w", err), "transactions")
	}
	inPeriod := finance.FilterByPeriod(txs, period, custom, now)

	state := finance.NewFilterState()
	state.SetFilters(finance.Filters{Type: orAll(q.Type), Status: orAll(q.Status), Search: q.Search})
	state.SetPage(q.Page)

	return &Report{
		Period:  period,
		Start:   finance.DayKey(start),
		End:     finance.DayKey(end),
		Stats:   finance.CalculatePeriodStats(inPeriod),
		Chart:   finance.ChartData(inPeriod, period, custom, now),
		Filters: state.Filters,
		Page:    state.Apply(inPeriod),
	}, nil
}

func (s *financeService) CreateTransaction(ctx context.Context, in NewTransaction) (*models.Transaction, error) {
	date := s.now()
	if in.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", in.Date, date.Location())
		if err != nil {
			return nil, apierr.InvalidErr("Invalid transaction", map[string]string{"date": "must be YYYY-MM-DD"})
		}
		date = d
	}
	if in.Status == "" {
		in.Status = string(models.TxPending)
	}
	if in.Reference == "" {
		in.Reference = uuid.NewString()
	}

	tx := &models.Transaction{
		Reference:   in.Reference,
		Date:        date,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Status:      in.Status,
		OrderRef:    in.OrderRef,
		OrderID:     in.OrderID,
		Category:    in.Category,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to create transaction: %w", err), "transaction")
	}

	s.logger.Info("transaction recorded",
		slog.String("reference", tx.Reference),
		slog.String("type", tx.Type),
		slog.String("status", tx.Status),
		slog.Float64("amount", tx.Amount),
	)
	return tx, nil
}

// parseRange parses the custom period bounds. Missing bounds are left nil so
// the period falls back to the default window.
func parseRange(start, end string, loc *time.Location) (*finance.DateRange, error) {
	var r finance.DateRange
	fields := map[string]string{}
	if start != "" {
		t, err := time.ParseInLocation("2006-01-02", start, loc)
		if err != nil {
			fields["start"] = "must be YYYY-MM-DD"
		} else {
			r.Start = &t
		}
	}
	if end != "" {
		t, err := time.ParseInLocation("2006-01-02", end, loc)
		if err != nil {
			fields["end"] = "must be YYYY-MM-DD"
		} else {
			// the whole end day belongs to the range
			t = t.Add(24*time.Hour - time.Nanosecond)
			r.End = &t
		}
	}
	if r.Start != nil && r.End != nil {
		switch days := r.Days(); {
		case days == 0:
			fields["end"] = "must not be before start"
		case days > finance.MaxCustomDays:
			fields["end"] = fmt.Sprintf("range must not exceed %d days", finance.MaxCustomDays)
		}
	}
	if len(fields) > 0 {
		return nil, apierr.InvalidErr("Invalid date range", fields)
	}
	return &r, nil
}

func orAll(v string) string {
	if v == "" {
		return finance.All
	}
	return v
}
