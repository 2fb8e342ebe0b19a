package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"moving_ops/internal/apierr"
	"moving_ops/internal/models"
	"moving_ops/internal/repository"

	"github.com/google/uuid"
)

// RateLog stores the per employment rate history.
type RateLog interface {
	AppendRateChange(ctx context.Context, employmentID uint, change models.RateChange, ttl time.Duration) error
	GetRateHistory(ctx context.Context, employmentID uint) ([]models.RateChange, error)
}

// RateUpdate is a request to change an employment's rate.
type RateUpdate struct {
	NewRate   float64 `json:"new_rate" binding:"gte=0"`
	Currency  string  `json:"currency" binding:"omitempty,len=3"`
	ChangedBy uint    `json:"changed_by"`
}

// NewEmployment links a user to a company at a starting rate.
type NewEmployment struct {
	UserID    uint    `json:"user_id" binding:"required"`
	CompanyID uint    `json:"company_id" binding:"required"`
	Rate      float64 `json:"rate" binding:"gte=0"`
	Currency  string  `json:"currency" binding:"omitempty,len=3"`
}

type RateService interface {
	CreateEmployment(ctx context.Context, in NewEmployment) (*models.Employment, error)
	RecordRateChange(ctx context.Context, employmentID uint, update RateUpdate) (*models.RateChange, error)
	History(ctx context.Context, employmentID uint) ([]models.RateChange, error)
	Export(ctx context.Context, employmentIDs ...uint) (map[string][]models.RateChange, error)
}

type rateService struct {
	employmentRepo  repository.EmploymentRepository
	log             RateLog
	ttl             time.Duration
	defaultCurrency string
	logger          *slog.Logger
	now             func() time.Time
}

func NewRateService(employmentRepo repository.EmploymentRepository, log RateLog, ttl time.Duration, defaultCurrency string, logger *slog.Logger) RateService {
	return &rateService{
		employmentRepo:  employmentRepo,
		log:             log,
		ttl:             ttl,
		defaultCurrency: defaultCurrency,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *rateService) CreateEmployment(ctx context.Context, in NewEmployment) (*models.Employment, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	employment := &models.Employment{
		UserID:    in.UserID,
		CompanyID: in.CompanyID,
		Rate:      in.Rate,
		Currency:  currency,
	}
	if err := s.employmentRepo.Create(ctx, employment); err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to create employment: %w", err), "employment")
	}
	return employment, nil
}

// RecordRateChange updates the employment's rate and appends the change to
// its history. The history entry is best effort; the rate itself is
// authoritative.
func (s *rateService) RecordRateChange(ctx context.Context, employmentID uint, update RateUpdate) (*models.RateChange, error) {
	if update.NewRate < 0 {
		return nil, apierr.InvalidErr("Invalid rate", map[string]string{"new_rate": "must not be negative"})
	}

	employment, err := s.employmentRepo.GetByID(ctx, employmentID)
	if err != nil {
		return nil, apierr.Wrap(err, "employment")
	}

	currency := strings.ToUpper(strings.TrimSpace(update.Currency))
	if currency == "" {
		currency = employment.Currency
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	change := models.RateChange{
		ID:        uuid.NewString(),
		OldRate:   employment.Rate,
		NewRate:   update.NewRate,
		Currency:  currency,
		ChangedBy: update.ChangedBy,
		ChangedAt: s.now().UTC(),
	}

	if err := s.employmentRepo.UpdateRate(ctx, employmentID, update.NewRate, currency); err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to update rate: %w", err), "employment")
	}
	if err := s.log.AppendRateChange(ctx, employmentID, change, s.ttl); err != nil {
		s.logger.Warn("failed to record rate history",
			slog.Uint64("employment_id", uint64(employmentID)),
			slog.Any("err", err),
		)
	}
	return &change, nil
}

func (s *rateService) History(ctx context.Context, employmentID uint) ([]models.RateChange, error) {
	history, err := s.log.GetRateHistory(ctx, employmentID)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.Unavailable, Message: "Rate history is unavailable", Err: err}
	}
	return history, nil
}

// Export returns the histories keyed by employment id.
func (s *rateService) Export(ctx context.Context, employmentIDs ...uint) (map[string][]models.RateChange, error) {
	out := make(map[string][]models.RateChange, len(employmentIDs))
	for _, id := range employmentIDs {
		history, err := s.History(ctx, id)
		if err != nil {
			return nil, err
		}
		out[strconv.FormatUint(uint64(id), 10)] = history
	}
	return out, nil
}
