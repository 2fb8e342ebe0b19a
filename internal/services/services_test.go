package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"moving_ops/internal/apierr"
	"moving_ops/internal/database/dbtest"
	"moving_ops/internal/models"
	"moving_ops/internal/redis"
	"moving_ops/internal/repository"
	"moving_ops/pkg/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Type)
	}
	return out
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

func assertKind(t *testing.T, err error, kind apierr.Kind) {
	t.Helper()
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected API error of kind %s, got %v", kind, err)
	}
	if ae.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", ae.Kind, kind, err)
	}
}

type fixture struct {
	db        *gorm.DB
	orders    *orderService
	notifier  *recordingNotifier
	cache     *redis.Client
	client    *models.User
	company   *models.Company
	packing   *models.Service
	transport *models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	ctx := context.Background()

	f := &fixture{db: db, notifier: &recordingNotifier{}, cache: newRedis(t)}

	f.client = &models.User{Name: "Ada", Email: "ada@example.com", Role: string(models.RoleClient)}
	if err := repository.NewUserRepository(db).Create(ctx, f.client); err != nil {
		t.Fatal(err)
	}
	catalog := repository.NewCatalogRepository(db)
	f.company = &models.Company{Name: "Swift Movers", IsActive: true}
	if err := catalog.CreateCompany(ctx, f.company); err != nil {
		t.Fatal(err)
	}
	f.packing = &models.Service{Name: "Packing", IsActive: true}
	f.transport = &models.Service{Name: "Transport", IsActive: true}
	for _, s := range []*models.Service{f.packing, f.transport} {
		if err := catalog.CreateService(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderServiceRepository(db),
		repository.NewOfferRepository(db),
		catalog,
		f.cache,
		NewNotificationService(f.notifier, discardLogger()),
		discardLogger(),
	).(*orderService)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	f.orders = svc
	return f
}

func TestNotifiersJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("gateway down")}

	err := Notifiers{failing, ok}.Notify(context.Background(), notify.Notification{Type: "offer"})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(ok.sent) != 1 || len(failing.sent) != 1 {
		t.Fatal("every notifier should be called")
	}
}

func TestNotificationServiceWithoutGateway(t *testing.T) {
	s := NewNotificationService(nil, discardLogger())
	// must not panic
	s.OrderStatusChanged(context.Background(), &models.Order{ID: 1}, "Order completed")
}
