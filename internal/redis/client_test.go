package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"moving_ops/internal/models"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRateHistoryAppendOnly(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	first := models.RateChange{ID: "a", OldRate: 15, NewRate: 17, Currency: "EUR", ChangedBy: 1, ChangedAt: time.Unix(100, 0).UTC()}
	second := models.RateChange{ID: "b", OldRate: 17, NewRate: 18.5, Currency: "EUR", ChangedBy: 2, ChangedAt: time.Unix(200, 0).UTC()}

	if err := c.AppendRateChange(ctx, 42, first, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.AppendRateChange(ctx, 42, second, 0); err != nil {
		t.Fatal(err)
	}

	history, err := c.GetRateHistory(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].ID != "a" || history[1].NewRate != 18.5 {
		t.Fatalf("history = %+v", history)
	}

	empty, err := c.GetRateHistory(ctx, 7)
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown employment: %v %v", empty, err)
	}
}

func TestRateHistoryTTL(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if err := c.AppendRateChange(ctx, 1, models.RateChange{ID: "x"}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("rate_history:1"); ttl != time.Hour {
		t.Fatalf("ttl = %s", ttl)
	}
}

func TestTempData(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	var out map[string]int
	if err := c.GetTempData(ctx, "stats", &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := c.SetTempData(ctx, "stats", map[string]int{"total": 3}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.GetTempData(ctx, "stats", &out); err != nil || out["total"] != 3 {
		t.Fatalf("got %v %v", out, err)
	}
	if err := c.DeleteTempData(ctx, "stats"); err != nil {
		t.Fatal(err)
	}
	if err := c.GetTempData(ctx, "stats", &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
