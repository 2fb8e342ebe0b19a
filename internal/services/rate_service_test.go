package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"moving_ops/internal/apierr"
	"moving_ops/internal/database/dbtest"
	"moving_ops/internal/models"
	"moving_ops/internal/repository"
)

func newRateService(t *testing.T, log RateLog) *rateService {
	t.Helper()
	s := NewRateService(repository.NewEmploymentRepository(dbtest.New(t)), log, 0, "EUR", discardLogger()).(*rateService)
	s.now = func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestRecordRateChange(t *testing.T) {
	s := newRateService(t, newRedis(t))
	ctx := context.Background()

	e, err := s.CreateEmployment(ctx, NewEmployment{UserID: 4, CompanyID: 1, Rate: 15})
	if err != nil {
		t.Fatal(err)
	}
	if e.Currency != "EUR" {
		t.Fatalf("currency = %q", e.Currency)
	}

	first, err := s.RecordRateChange(ctx, e.ID, RateUpdate{NewRate: 17, ChangedBy: 9})
	if err != nil {
		t.Fatal(err)
	}
	if first.OldRate != 15 || first.NewRate != 17 || first.Currency != "EUR" || first.ID == "" {
		t.Fatalf("first = %+v", first)
	}
	if _, err := s.RecordRateChange(ctx, e.ID, RateUpdate{NewRate: 18.5, Currency: "usd", ChangedBy: 9}); err != nil {
		t.Fatal(err)
	}

	history, err := s.History(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[1].OldRate != 17 || history[1].Currency != "USD" {
		t.Fatalf("history = %+v", history)
	}

	export, err := s.Export(ctx, e.ID, 77)
	if err != nil {
		t.Fatal(err)
	}
	if len(export["1"]) != 2 || len(export["77"]) != 0 {
		t.Fatalf("export = %+v", export)
	}

	_, err = s.RecordRateChange(ctx, 999, RateUpdate{NewRate: 10})
	assertKind(t, err, apierr.NotFound)
	_, err = s.RecordRateChange(ctx, e.ID, RateUpdate{NewRate: -1})
	assertKind(t, err, apierr.Invalid)
}

type brokenLog struct{}

func (brokenLog) AppendRateChange(ctx context.Context, employmentID uint, change models.RateChange, ttl time.Duration) error {
	return errors.New("redis down")
}

func (brokenLog) GetRateHistory(ctx context.Context, employmentID uint) ([]models.RateChange, error) {
	return nil, errors.New("redis down")
}

func TestRateChangeSurvivesHistoryFailure(t *testing.T) {
	s := newRateService(t, brokenLog{})
	ctx := context.Background()

	e, err := s.CreateEmployment(ctx, NewEmployment{UserID: 4, CompanyID: 1, Rate: 15})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRateChange(ctx, e.ID, RateUpdate{NewRate: 16}); err != nil {
		t.Fatalf("rate update should not depend on the history log: %v", err)
	}
	got, err := s.employmentRepo.GetByID(ctx, e.ID)
	if err != nil || got.Rate != 16 {
		t.Fatalf("employment = %+v %v", got, err)
	}

	_, err = s.History(ctx, e.ID)
	assertKind(t, err, apierr.Unavailable)
}
