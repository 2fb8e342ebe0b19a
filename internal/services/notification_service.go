package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moving_ops/internal/models"
	"moving_ops/pkg/notify"
)

// Notifier delivers a notification to the gateway.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

// Notifiers sends every notification to each notifier in turn.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, n notify.Notification) error {
	var errs []error
	for _, notifier := range ns {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type NotificationService interface {
	OrderStatusChanged(ctx context.Context, order *models.Order, event string)
	OfferReceived(ctx context.Context, order *models.Order, offer *models.Offer)
}

type notificationService struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewNotificationService returns a best effort notification sender. With a
// nil notifier notifications are only logged.
func NewNotificationService(notifier Notifier, logger *slog.Logger) NotificationService {
	return &notificationService{notifier: notifier, logger: logger}
}

func (s *notificationService) OrderStatusChanged(ctx context.Context, order *models.Order, event string) {
	s.send(ctx, notify.Notification{
		UserID:  order.ClientID,
		Type:    "order_status",
		Title:   fmt.Sprintf("Order #%d", order.ID),
		Message: event,
		Data: map[string]interface{}{
			"order_id": order.ID,
			"status":   order.Status,
			"event":    event,
		},
	})
}

func (s *notificationService) OfferReceived(ctx context.Context, order *models.Order, offer *models.Offer) {
	data := map[string]interface{}{
		"order_id":         order.ID,
		"offer_id":         offer.ID,
		"order_service_id": offer.OrderServiceID,
		"company_id":       offer.CompanyID,
	}
	if offer.Price != nil {
		data["price"] = *offer.Price
	}
	s.send(ctx, notify.Notification{
		UserID:  order.ClientID,
		Type:    "offer",
		Title:   fmt.Sprintf("New offer for order #%d", order.ID),
		Message: offer.Notes,
		Data:    data,
	})
}

func (s *notificationService) send(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		s.logger.Debug("notification skipped, no gateway configured", slog.String("type", n.Type), slog.Uint64("user_id", uint64(n.UserID)))
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notification failed",
			slog.String("type", n.Type),
			slog.Uint64("user_id", uint64(n.UserID)),
			slog.Any("err", err),
		)
	}
}
