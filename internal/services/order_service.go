package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"moving_ops/internal/apierr"
	"moving_ops/internal/models"
	"moving_ops/internal/orders"
	"moving_ops/internal/repository"
	"moving_ops/internal/status"

	"gorm.io/gorm"
)

// StatsCache keeps short lived aggregates.
type StatsCache interface {
	SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetTempData(ctx context.Context, key string, dest interface{}) error
	DeleteTempData(ctx context.Context, key string) error
}

const (
	orderStatsKey = "order_stats"
	orderStatsTTL = time.Minute
)

// Scope limits which orders a caller sees and acts on. A client scope covers
// the client's own orders, a company scope the lines assigned to the company.
// The zero scope covers everything.
type Scope struct {
	ClientID  uint
	CompanyID uint
}

// Allows reports whether the order is within the scope.
func (sc Scope) Allows(o *models.Order) bool {
	if sc.ClientID != 0 && o.ClientID != sc.ClientID {
		return false
	}
	if sc.CompanyID == 0 {
		return true
	}
	for i := range o.OrderServices {
		if sc.allowsLine(&o.OrderServices[i]) {
			return true
		}
	}
	return false
}

func (sc Scope) allowsLine(l *models.OrderService) bool {
	return sc.CompanyID == 0 || (l.CompanyID != nil && *l.CompanyID == sc.CompanyID)
}

type OrderService interface {
	CreateOrder(ctx context.Context, view orders.View) (*orders.View, error)
	GetOrder(ctx context.Context, scope Scope, id uint) (*orders.View, error)
	ListOrders(ctx context.Context, scope Scope, statusFilter string) ([]orders.View, error)
	OrderStats(ctx context.Context) (orders.Stats, error)
	AssignCompany(ctx context.Context, lineID, companyID uint) (*orders.View, error)
	SendOffer(ctx context.Context, scope Scope, lineID uint, price float64, notes string) (*orders.View, error)
	RespondToOffer(ctx context.Context, scope Scope, offerID uint, accept bool) (*orders.View, error)
	Schedule(ctx context.Context, orderID uint, date, at string) (*orders.View, error)
	UpdateLineStatus(ctx context.Context, scope Scope, lineID uint, to status.UI) (*orders.View, error)
	Complete(ctx context.Context, orderID uint) (*orders.View, error)
	Cancel(ctx context.Context, orderID uint) (*orders.View, error)
	CompanyOffers(ctx context.Context, companyID uint) ([]models.Offer, error)
	Services(ctx context.Context) ([]models.Service, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	lineRepo    repository.OrderServiceRepository
	offerRepo   repository.OfferRepository
	catalogRepo repository.CatalogRepository
	cache       StatsCache
	notifier    NotificationService
	logger      *slog.Logger
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	lineRepo repository.OrderServiceRepository,
	offerRepo repository.OfferRepository,
	catalogRepo repository.CatalogRepository,
	cache StatsCache,
	notifier NotificationService,
	logger *slog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		lineRepo:    lineRepo,
		offerRepo:   offerRepo,
		catalogRepo: catalogRepo,
		cache:       cache,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

func (s *orderService) CreateOrder(ctx context.Context, view orders.View) (*orders.View, error) {
	payload := orders.ForBackend(view, s.now())

	fields := map[string]string{}
	if payload.ClientID == 0 {
		fields["client_id"] = "required"
	}
	if payload.LocationID == 0 {
		fields["location_id"] = "required"
	}
	if len(payload.Services) == 0 {
		fields["services"] = "at least one service is required"
	}
	if !dateRe.MatchString(payload.PreferredDate) {
		fields["preferred_date"] = "must be YYYY-MM-DD"
	}
	if !timeRe.MatchString(payload.PreferredTime) {
		fields["preferred_time"] = "must be HH:MM or HH:MM:SS"
	}
	if payload.NumberOfRooms < 0 {
		fields["number_of_rooms"] = "must not be negative"
	}
	if len(payload.Services) > 0 {
		if err := s.checkCatalog(ctx, payload.Services, fields); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, apierr.InvalidErr("Invalid order", fields)
	}

	order := &models.Order{
		ClientID:              payload.ClientID,
		LocationID:            payload.LocationID,
		DestinationLocationID: payload.DestinationLocationID,
		PreferredDate:         payload.PreferredDate,
		PreferredTime:         payload.PreferredTime,
		NumberOfRooms:         payload.NumberOfRooms,
		Notes:                 payload.Notes,
		Images:                payload.Images,
	}
	for _, svc := range payload.Services {
		line := models.OrderService{
			ServiceID: svc.ServiceID,
			CompanyID: svc.CompanyID,
			Status:    string(status.UIPending),
		}
		if svc.CompanyID != nil {
			line.Status = string(status.UIAssigned)
		}
		order.OrderServices = append(order.OrderServices, line)
	}
	// a new order's status only follows from its lines
	order.Status = string(status.Aggregate(lineStatuses(order.OrderServices)))

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to create order: %w", err), "order")
	}
	s.invalidateStats(ctx)
	s.logger.Info("order created", slog.Uint64("order_id", uint64(order.ID)), slog.String("status", order.Status))

	return s.view(ctx, order.ID)
}

// checkCatalog records a field error for every requested service or company
// that does not exist or is inactive.
func (s *orderService) checkCatalog(ctx context.Context, lines []orders.ServicePayload, fields map[string]string) error {
	active, err := s.catalogRepo.GetServices(ctx)
	if err != nil {
		return apierr.Wrap(fmt.Errorf("failed to load services: %w", err), "services")
	}
	known := make(map[uint]bool, len(active))
	for _, svc := range active {
		known[svc.ID] = true
	}

	companies := map[uint]bool{}
	for _, line := range lines {
		if !known[line.ServiceID] {
			fields["services"] = fmt.Sprintf("unknown service_id %d", line.ServiceID)
		}
		if line.CompanyID == nil {
			continue
		}
		id := *line.CompanyID
		if ok, seen := companies[id]; seen {
			if !ok {
				fields["company_id"] = fmt.Sprintf("unknown company_id %d", id)
			}
			continue
		}
		company, err := s.catalogRepo.GetCompanyByID(ctx, id)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			companies[id] = false
		case err != nil:
			return apierr.Wrap(fmt.Errorf("failed to load company %d: %w", id, err), "company")
		default:
			companies[id] = company.IsActive
		}
		if !companies[id] {
			fields["company_id"] = fmt.Sprintf("unknown company_id %d", id)
		}
	}
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, scope Scope, id uint) (*orders.View, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apierr.Wrap(err, "order")
	}
	if !scope.Allows(order) {
		return nil, apierr.ForbiddenErr("Order is outside your scope")
	}
	v := orders.FromBackend(*order)
	return &v, nil
}

func (s *orderService) view(ctx context.Context, id uint) (*orders.View, error) {
	return s.GetOrder(ctx, Scope{}, id)
}

func (s *orderService) ListOrders(ctx context.Context, scope Scope, statusFilter string) ([]orders.View, error) {
	var (
		list []models.Order
		err  error
	)
	switch {
	case scope.ClientID != 0:
		list, err = s.orderRepo.GetByClientID(ctx, scope.ClientID)
	case scope.CompanyID != 0:
		list, err = s.orderRepo.GetByCompanyID(ctx, scope.CompanyID)
	default:
		list, err = s.orderRepo.GetAll(ctx)
	}
	if err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to list orders: %w", err), "orders")
	}

	list = orders.FilterByStatus(list, statusFilter)
	views := make([]orders.View, 0, len(list))
	for _, o := range list {
		views = append(views, orders.FromBackend(o))
	}
	return views, nil
}

func (s *orderService) OrderStats(ctx context.Context) (orders.Stats, error) {
	var stats orders.Stats
	if s.cache != nil {
		if err := s.cache.GetTempData(ctx, orderStatsKey, &stats); err == nil {
			return stats, nil
		}
	}

	list, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return stats, apierr.Wrap(fmt.Errorf("failed to load orders: %w", err), "orders")
	}
	stats = orders.Aggregate(list)

	if s.cache != nil {
		if err := s.cache.SetTempData(ctx, orderStatsKey, stats, orderStatsTTL); err != nil {
			s.logger.Warn("failed to cache order stats", slog.Any("err", err))
		}
	}
	return stats, nil
}

func (s *orderService) AssignCompany(ctx context.Context, lineID, companyID uint) (*orders.View, error) {
	company, err := s.catalogRepo.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, apierr.Wrap(err, "company")
	}
	if !company.IsActive {
		return nil, apierr.InvalidErr("Company is not active", nil)
	}

	order, line, err := s.loadLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if err := moveLine(line, status.UIAssigned); err != nil {
		return nil, err
	}
	line.CompanyID = &company.ID
	line.Price = nil

	return s.persist(ctx, order, []models.OrderService{*line}, nil, fmt.Sprintf("Service assigned to %s", company.Name))
}

func (s *orderService) SendOffer(ctx context.Context, scope Scope, lineID uint, price float64, notes string) (*orders.View, error) {
	if price <= 0 {
		return nil, apierr.InvalidErr("Invalid offer", map[string]string{"price": "must be greater than 0"})
	}

	order, line, err := s.loadLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.CompanyID == nil {
		return nil, apierr.ConflictErr("Service line has no company assigned", nil)
	}
	if !scope.allowsLine(line) {
		return nil, apierr.ForbiddenErr("Service line is assigned to another company")
	}
	if err := moveLine(line, status.UIOfferSent); err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetByOrderServiceID(ctx, line.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Wrap(err, "offer")
	}
	if offer == nil {
		offer = &models.Offer{OrderServiceID: line.ID}
	}
	offer.CompanyID = *line.CompanyID
	offer.Price = &price
	offer.Notes = notes
	offer.Status = string(models.OfferPending)

	v, err := s.persist(ctx, order, []models.OrderService{*line}, offer, "Offer received")
	if err != nil {
		return nil, err
	}
	s.notifier.OfferReceived(ctx, order, offer)
	return v, nil
}

func (s *orderService) RespondToOffer(ctx context.Context, scope Scope, offerID uint, accept bool) (*orders.View, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, apierr.Wrap(err, "offer")
	}
	if offer.Status != string(models.OfferPending) {
		return nil, apierr.ConflictErr("Offer was already answered", nil)
	}

	order, line, err := s.loadLine(ctx, offer.OrderServiceID)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(order) {
		return nil, apierr.ForbiddenErr("Order is outside your scope")
	}

	event := "Offer rejected"
	if accept {
		if err := moveLine(line, status.UIOfferAccepted); err != nil {
			return nil, err
		}
		offer.Status = string(models.OfferAccepted)
		line.Price = offer.Price
		event = "Offer accepted"
	} else {
		if err := moveLine(line, status.UIOfferRejected); err != nil {
			return nil, err
		}
		offer.Status = string(models.OfferRejected)
		line.CompanyID = nil
		line.Price = nil
	}

	return s.persist(ctx, order, []models.OrderService{*line}, offer, event)
}

func (s *orderService) Schedule(ctx context.Context, orderID uint, date, at string) (*orders.View, error) {
	fields := map[string]string{}
	if !dateRe.MatchString(date) {
		fields["date"] = "must be YYYY-MM-DD"
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		fields["date"] = "invalid date"
	}
	if at == "" {
		at = orders.DefaultPreferredTime
	}
	if !timeRe.MatchString(at) {
		fields["time"] = "must be HH:MM or HH:MM:SS"
	}
	if len(fields) > 0 {
		return nil, apierr.InvalidErr("Invalid schedule", fields)
	}
	if len(at) == len("15:04") {
		at += ":00"
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apierr.Wrap(err, "order")
	}

	var moved []models.OrderService
	for i := range order.OrderServices {
		line := &order.OrderServices[i]
		if status.UI(line.Status) != status.UIOfferAccepted {
			continue
		}
		line.Status = string(status.UIScheduled)
		moved = append(moved, *line)
	}
	if len(moved) == 0 {
		return nil, apierr.ConflictErr("No accepted offers to schedule", nil)
	}

	order.PreferredDate = date
	order.PreferredTime = at
	return s.persist(ctx, order, moved, nil, fmt.Sprintf("Move scheduled for %s %s", date, at))
}

func (s *orderService) UpdateLineStatus(ctx context.Context, scope Scope, lineID uint, to status.UI) (*orders.View, error) {
	switch to {
	case status.UIInProgress, status.UIPartiallyDone, status.UICompleted:
	default:
		return nil, apierr.InvalidErr("Status cannot be set directly", map[string]string{"status": string(to)})
	}

	order, line, err := s.loadLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if !scope.allowsLine(line) {
		return nil, apierr.ForbiddenErr("Service line is assigned to another company")
	}
	if err := moveLine(line, to); err != nil {
		return nil, err
	}
	return s.persist(ctx, order, []models.OrderService{*line}, nil, "Service "+string(to))
}

func (s *orderService) Complete(ctx context.Context, orderID uint) (*orders.View, error) {
	return s.closeOrder(ctx, orderID, status.UICompleted, "Order completed")
}

func (s *orderService) Cancel(ctx context.Context, orderID uint) (*orders.View, error) {
	return s.closeOrder(ctx, orderID, status.UICancelled, "Order cancelled")
}

// closeOrder moves every open line to the target status. It fails without
// changing anything when one line cannot make the step.
func (s *orderService) closeOrder(ctx context.Context, orderID uint, to status.UI, event string) (*orders.View, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apierr.Wrap(err, "order")
	}

	var moved []models.OrderService
	for i := range order.OrderServices {
		line := &order.OrderServices[i]
		from := status.UI(line.Status)
		// a rejected line already counts as cancelled
		if from == to || status.IsTerminal(from) || from == status.UIOfferRejected {
			continue
		}
		if err := moveLine(line, to); err != nil {
			return nil, err
		}
		moved = append(moved, *line)
	}
	if len(moved) == 0 {
		return nil, apierr.ConflictErr("Order has no open services", nil)
	}

	return s.persist(ctx, order, moved, nil, event)
}

func (s *orderService) CompanyOffers(ctx context.Context, companyID uint) ([]models.Offer, error) {
	offers, err := s.offerRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to list offers: %w", err), "offers")
	}
	return offers, nil
}

// Services lists the active service types an order can request.
func (s *orderService) Services(ctx context.Context) ([]models.Service, error) {
	services, err := s.catalogRepo.GetServices(ctx)
	if err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to list services: %w", err), "services")
	}
	return services, nil
}

func (s *orderService) loadLine(ctx context.Context, lineID uint) (*models.Order, *models.OrderService, error) {
	line, err := s.lineRepo.GetByID(ctx, lineID)
	if err != nil {
		return nil, nil, apierr.Wrap(err, "order service")
	}
	order, err := s.orderRepo.GetByID(ctx, line.OrderID)
	if err != nil {
		return nil, nil, apierr.Wrap(err, "order")
	}
	for i := range order.OrderServices {
		if order.OrderServices[i].ID == line.ID {
			return order, &order.OrderServices[i], nil
		}
	}
	return nil, nil, apierr.NotFoundErr("order service not found")
}

// persist recomputes the order status from its lines, saves the step and
// notifies the client.
func (s *orderService) persist(ctx context.Context, order *models.Order, lines []models.OrderService, offer *models.Offer, event string) (*orders.View, error) {
	previous := order.Status
	order.Status = string(status.Aggregate(lineStatuses(order.OrderServices)))

	if err := s.orderRepo.SaveLifecycle(ctx, order, lines, offer); err != nil {
		return nil, apierr.Wrap(fmt.Errorf("failed to save order %d: %w", order.ID, err), "order")
	}
	s.invalidateStats(ctx)

	s.logger.Info("order updated",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.String("event", event),
		slog.String("from", previous),
		slog.String("to", order.Status),
	)
	s.notifier.OrderStatusChanged(ctx, order, event)

	return s.view(ctx, order.ID)
}

func (s *orderService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteTempData(ctx, orderStatsKey); err != nil {
		s.logger.Warn("failed to invalidate order stats", slog.Any("err", err))
	}
}

func moveLine(line *models.OrderService, to status.UI) error {
	next, err := status.Transition(status.UI(line.Status), to)
	if err != nil {
		return apierr.ConflictErr(fmt.Sprintf("Service line %d: %s", line.ID, err.Error()), err)
	}
	line.Status = string(next)
	return nil
}

func lineStatuses(lines []models.OrderService) []status.UI {
	out := make([]status.UI, 0, len(lines))
	for _, l := range lines {
		out = append(out, status.UI(l.Status))
	}
	return out
}
