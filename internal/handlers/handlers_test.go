package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"

	"moving_ops/internal/database/dbtest"
	"moving_ops/internal/i18n"
	"moving_ops/internal/middleware"
	"moving_ops/internal/models"
	"moving_ops/internal/redis"
	"moving_ops/internal/repository"
	"moving_ops/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router  *gin.Engine
	admin   *models.User
	client  *models.User
	staff   *models.User
	company *models.Company
	service *models.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := dbtest.New(t)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userService := services.NewUserService(userRepo)

	api := &testAPI{
		admin:   &models.User{Name: "Root", Email: "root@example.com", Role: string(models.RoleSuperAdmin)},
		client:  &models.User{Name: "Ada", Email: "ada@example.com", Role: string(models.RoleClient)},
		company: &models.Company{Name: "Swift Movers", IsActive: true},
		service: &models.Service{Name: "Transport", IsActive: true},
	}
	if err := catalogRepo.CreateCompany(ctx, api.company); err != nil {
		t.Fatal(err)
	}
	api.staff = &models.User{Name: "Mo", Email: "mo@example.com", Role: string(models.RoleCompanyAdmin), CompanyID: &api.company.ID}
	for _, u := range []*models.User{api.admin, api.client, api.staff} {
		if err := userService.CreateUser(ctx, u, "password1"); err != nil {
			t.Fatal(err)
		}
	}
	if err := catalogRepo.CreateService(ctx, api.service); err != nil {
		t.Fatal(err)
	}

	catalog, err := i18n.NewCatalog()
	if err != nil {
		t.Fatal(err)
	}

	orderService := services.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewOrderServiceRepository(db),
		repository.NewOfferRepository(db),
		catalogRepo,
		cache,
		services.NewNotificationService(nil, l),
		l,
	)
	financeService := services.NewFinanceService(repository.NewTransactionRepository(db), l)
	rateService := services.NewRateService(repository.NewEmploymentRepository(db), cache, 0, "EUR", l)

	h := NewAPIHandler(userService, orderService, financeService, rateService, catalog, "en")
	api.router = NewRouter(l, h)
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(middleware.HeaderUserID, fmt.Sprint(userID))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/api/health", nil, 0)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestOrderEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"clientId":        api.client.ID,
		"locationId":      3,
		"number_of_rooms": "4",
		"schedule":        map[string]string{"date": "2026-11-20"},
		"services":        []map[string]interface{}{{"serviceId": api.service.ID}},
	}, api.client.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var order struct {
		ID            uint   `json:"id"`
		Status        string `json:"status"`
		PreferredDate string `json:"preferred_date"`
		PreferredTime string `json:"preferred_time"`
		Services      []struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
			Offer  *struct {
				ID uint `json:"id"`
			} `json:"offer"`
		} `json:"services"`
	}
	decodeJSON(t, w, &order)
	if order.Status != "pending" || order.PreferredDate != "2026-11-20" || order.PreferredTime != "09:00:00" {
		t.Fatalf("order = %+v", order)
	}
	lineID := order.Services[0].ID

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/order-services/%d/assign", lineID), map[string]uint{"company_id": api.company.ID}, api.admin.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("assign status = %d: %s", w.Code, w.Body.String())
	}
	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/order-services/%d/offers", lineID), map[string]interface{}{"price": 640.0}, api.staff.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("offer status = %d: %s", w.Code, w.Body.String())
	}
	decodeJSON(t, w, &order)
	if order.Services[0].Status != "offer_sent" || order.Services[0].Offer == nil {
		t.Fatalf("after offer = %+v", order)
	}

	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/offers/%d/respond", order.Services[0].Offer.ID), map[string]bool{"accept": true}, api.client.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("respond status = %d: %s", w.Code, w.Body.String())
	}
	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/schedule", order.ID), map[string]string{"date": "2026-11-21", "time": "07:30"}, api.admin.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("schedule status = %d: %s", w.Code, w.Body.String())
	}
	w = api.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/complete", order.ID), nil, api.admin.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d: %s", w.Code, w.Body.String())
	}
	decodeJSON(t, w, &order)
	if order.Status != "completed" {
		t.Fatalf("status = %q", order.Status)
	}

	w = api.do(t, http.MethodGet, "/api/orders?status=completed", nil, api.client.ID)
	var list struct {
		Count int `json:"count"`
	}
	decodeJSON(t, w, &list)
	if list.Count != 1 {
		t.Fatalf("completed orders = %d", list.Count)
	}

	w = api.do(t, http.MethodGet, "/api/orders/stats", nil, api.admin.ID)
	var stats struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
	}
	decodeJSON(t, w, &stats)
	if stats.Total != 1 || stats.Completed != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/companies/%d/offers", api.company.ID), nil, api.staff.ID)
	decodeJSON(t, w, &list)
	if list.Count != 1 {
		t.Fatalf("company offers = %d", list.Count)
	}
}

func TestOrderEndpointErrors(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"bad id", http.MethodGet, "/api/orders/abc", nil, http.StatusBadRequest},
		{"missing order", http.MethodGet, "/api/orders/42", nil, http.StatusNotFound},
		{"invalid order", http.MethodPost, "/api/orders", map[string]interface{}{}, http.StatusBadRequest},
		{"offer without price", http.MethodPost, "/api/order-services/1/offers", map[string]interface{}{}, http.StatusBadRequest},
		{"respond without decision", http.MethodPost, "/api/offers/1/respond", map[string]interface{}{}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/order-services/1/assign", "not json", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(t, tc.method, tc.path, tc.body, api.admin.ID)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
			var b struct {
				Message   string `json:"message"`
				RequestID string `json:"request_id"`
			}
			decodeJSON(t, w, &b)
			if b.Message == "" || b.RequestID == "" {
				t.Fatalf("error body = %s", w.Body.String())
			}
		})
	}
}

func TestOrderEndpointsCheckRoles(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"clientId":   api.admin.ID,
		"locationId": 3,
		"status":     "completed",
		"services":   []map[string]interface{}{{"serviceId": api.service.ID, "companyId": api.company.ID}},
	}, api.client.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var order struct {
		ID       uint   `json:"id"`
		ClientID uint   `json:"clientId"`
		Status   string `json:"status"`
		Services []struct {
			ID uint `json:"id"`
		} `json:"services"`
	}
	decodeJSON(t, w, &order)
	// clients always order for themselves and never pick the status
	if order.ClientID != api.client.ID || order.Status != "in_progress" {
		t.Fatalf("order = %+v", order)
	}

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		userID uint
		want   int
	}{
		{"anonymous create", http.MethodPost, "/api/orders", map[string]interface{}{}, 0, http.StatusUnauthorized},
		{"anonymous cancel", http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil, 0, http.StatusUnauthorized},
		{"client cancel", http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil, api.client.ID, http.StatusForbidden},
		{"client schedule", http.MethodPost, fmt.Sprintf("/api/orders/%d/schedule", order.ID), map[string]string{"date": "2026-11-21"}, api.client.ID, http.StatusForbidden},
		{"client assign", http.MethodPost, fmt.Sprintf("/api/order-services/%d/assign", order.Services[0].ID), map[string]uint{"company_id": api.company.ID}, api.client.ID, http.StatusForbidden},
		{"client offer", http.MethodPost, fmt.Sprintf("/api/order-services/%d/offers", order.Services[0].ID), map[string]float64{"price": 10}, api.client.ID, http.StatusForbidden},
		{"client line status", http.MethodPost, fmt.Sprintf("/api/order-services/%d/status", order.Services[0].ID), map[string]string{"status": "in_progress"}, api.client.ID, http.StatusForbidden},
		{"staff respond", http.MethodPost, "/api/offers/1/respond", map[string]bool{"accept": true}, api.staff.ID, http.StatusForbidden},
		{"client stats", http.MethodGet, "/api/orders/stats", nil, api.client.ID, http.StatusForbidden},
		{"anonymous list", http.MethodGet, "/api/orders", nil, 0, http.StatusUnauthorized},
		{"client company offers", http.MethodGet, fmt.Sprintf("/api/companies/%d/offers", api.company.ID), nil, api.client.ID, http.StatusForbidden},
		{"staff other company offers", http.MethodGet, fmt.Sprintf("/api/companies/%d/offers", api.company.ID+1), nil, api.staff.ID, http.StatusForbidden},
		{"staff own order", http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), nil, api.staff.ID, http.StatusOK},
		{"admin cancel", http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil, api.admin.ID, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(t, tc.method, tc.path, tc.body, tc.userID)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}

	// a client cannot widen the listing through the query
	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/orders?client_id=%d", api.admin.ID), nil, api.client.ID)
	var list struct {
		Count int `json:"count"`
	}
	decodeJSON(t, w, &list)
	if list.Count != 1 {
		t.Fatalf("client sees %d orders", list.Count)
	}
}

func TestBindErrorsAreKeyedByJSONName(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/finance/transactions", map[string]interface{}{
		"description": "Fuel",
		"amount":      -5,
		"type":        "refund",
	}, api.admin.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var b struct {
		Data map[string]string `json:"data"`
	}
	decodeJSON(t, w, &b)
	if b.Data["amount"] == "" || b.Data["type"] == "" {
		t.Fatalf("data = %v", b.Data)
	}
}

func TestFinanceEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/finance/report", nil, api.client.ID)
	if w.Code != http.StatusForbidden {
		t.Fatalf("client should be forbidden, got %d", w.Code)
	}

	w = api.do(t, http.MethodPost, "/api/finance/transactions", map[string]interface{}{
		"description": "Move #1",
		"amount":      300,
		"type":        "income",
		"status":      "completed",
		"orderRef":    "ORD-1",
	}, api.admin.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/finance/report?period=7d&search=ord-1", nil, api.admin.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d: %s", w.Code, w.Body.String())
	}
	var report struct {
		Period string `json:"period"`
		Chart  []struct {
			Income float64 `json:"income"`
		} `json:"chart"`
		Page struct {
			Filtered int `json:"filtered"`
		} `json:"page"`
	}
	decodeJSON(t, w, &report)
	if report.Period != "7d" || len(report.Chart) != 7 || report.Page.Filtered != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Chart[6].Income != 300 {
		t.Fatalf("today's income = %v", report.Chart[6].Income)
	}
}

func TestRateEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/employments", map[string]interface{}{
		"user_id":    api.client.ID,
		"company_id": api.company.ID,
		"rate":       15,
	}, api.admin.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("employment status = %d: %s", w.Code, w.Body.String())
	}
	var employment models.Employment
	decodeJSON(t, w, &employment)

	path := fmt.Sprintf("/api/employments/%d/rates", employment.ID)
	w = api.do(t, http.MethodPost, path, map[string]interface{}{"new_rate": 18}, api.admin.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("rate status = %d: %s", w.Code, w.Body.String())
	}
	var change models.RateChange
	decodeJSON(t, w, &change)
	if change.OldRate != 15 || change.NewRate != 18 || change.ChangedBy != api.admin.ID {
		t.Fatalf("change = %+v", change)
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/rates/export?ids=%d", employment.ID), nil, api.admin.ID)
	var export map[string][]models.RateChange
	decodeJSON(t, w, &export)
	if len(export[fmt.Sprint(employment.ID)]) != 1 {
		t.Fatalf("export = %+v", export)
	}

	w = api.do(t, http.MethodGet, "/api/rates/export?ids=1,x", nil, api.admin.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad ids status = %d", w.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t)
	newUser := map[string]interface{}{
		"name":     "Dana",
		"email":    "dana@example.com",
		"role":     "driver",
		"password": "password1",
	}

	w := api.do(t, http.MethodPost, "/api/users", newUser, 0)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	w = api.do(t, http.MethodPost, "/api/users", newUser, api.client.ID)
	if w.Code != http.StatusForbidden {
		t.Fatalf("client status = %d", w.Code)
	}
	w = api.do(t, http.MethodPost, "/api/users", newUser, api.admin.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin status = %d: %s", w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("password hash leaked: %s", w.Body.String())
	}

	w = api.do(t, http.MethodGet, "/api/users?role=driver", nil, api.admin.ID)
	var list struct {
		Count int `json:"count"`
	}
	decodeJSON(t, w, &list)
	if list.Count != 1 {
		t.Fatalf("drivers = %d", list.Count)
	}
}

func TestStatusEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/status/map?status=offer_sent&locale=de", nil, 0)
	var mapped struct {
		Canonical string `json:"canonical"`
		Known     bool   `json:"known"`
		Label     string `json:"label"`
		Color     string `json:"color"`
	}
	decodeJSON(t, w, &mapped)
	if mapped.Canonical != "in_progress" || !mapped.Known || mapped.Label != "Ausstehend" {
		t.Fatalf("mapped = %+v", mapped)
	}

	w = api.do(t, http.MethodGet, "/api/status/map?status=bogus", nil, 0)
	decodeJSON(t, w, &mapped)
	if mapped.Canonical != "pending" || mapped.Known || mapped.Color != "gray" || mapped.Label != "bogus" {
		t.Fatalf("unknown = %+v", mapped)
	}

	w = api.do(t, http.MethodGet, "/api/status/labels", nil, 0)
	var labels struct {
		Labels  []struct{ Status, Label string } `json:"labels"`
		Filters []struct{ Status string }        `json:"filters"`
		Locales []string                         `json:"locales"`
	}
	decodeJSON(t, w, &labels)
	if len(labels.Labels) != 10 || len(labels.Filters) != 5 || len(labels.Locales) < 2 {
		t.Fatalf("labels = %+v", labels)
	}
}
