package handlers

import (
	"net/http"
	"strconv"

	"moving_ops/internal/apierr"
	"moving_ops/internal/i18n"
	"moving_ops/internal/middleware"
	"moving_ops/internal/models"
	"moving_ops/internal/services"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	userService    services.UserService
	orderService   services.OrderService
	financeService services.FinanceService
	rateService    services.RateService
	catalog        *i18n.Catalog
	defaultLocale  string
}

func NewAPIHandler(
	userService services.UserService,
	orderService services.OrderService,
	financeService services.FinanceService,
	rateService services.RateService,
	catalog *i18n.Catalog,
	defaultLocale string,
) *APIHandler {
	return &APIHandler{
		userService:    userService,
		orderService:   orderService,
		financeService: financeService,
		rateService:    rateService,
		catalog:        catalog,
		defaultLocale:  defaultLocale,
	}
}

// RegisterRoutes mounts the API under /api.
func (h *APIHandler) RegisterRoutes(router *gin.Engine) {
	anyone := middleware.RequireRole(h.userService, models.Roles...)
	admins := middleware.RequireRole(h.userService, models.RoleSiteAdmin, models.RoleSuperAdmin)
	clients := middleware.RequireRole(h.userService, models.RoleClient, models.RoleSiteAdmin, models.RoleSuperAdmin)
	companyStaff := middleware.RequireRole(h.userService, models.RoleCompanyAdmin, models.RoleSiteAdmin, models.RoleSuperAdmin)
	fieldStaff := middleware.RequireRole(h.userService, models.RoleDriver, models.RoleWorker, models.RoleCompanyAdmin, models.RoleSiteAdmin, models.RoleSuperAdmin)

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/status/map", h.MapStatus)
		api.GET("/status/labels", h.StatusLabels)
		api.GET("/services", h.ListServices)

		api.POST("/orders", clients, h.CreateOrder)
		api.GET("/orders", anyone, h.ListOrders)
		api.GET("/orders/stats", admins, h.OrderStats)
		api.GET("/orders/:id", anyone, h.GetOrder)
		api.POST("/orders/:id/schedule", admins, h.ScheduleOrder)
		api.POST("/orders/:id/complete", admins, h.CompleteOrder)
		api.POST("/orders/:id/cancel", admins, h.CancelOrder)

		api.POST("/order-services/:id/assign", admins, h.AssignCompany)
		api.POST("/order-services/:id/offers", companyStaff, h.SendOffer)
		api.POST("/order-services/:id/status", fieldStaff, h.UpdateLineStatus)
		api.POST("/offers/:id/respond", clients, h.RespondToOffer)
		api.GET("/companies/:id/offers", companyStaff, h.CompanyOffers)

		finance := api.Group("/finance", admins)
		{
			finance.GET("/report", h.FinanceReport)
			finance.POST("/transactions", h.CreateTransaction)
		}

		rates := api.Group("/employments", companyStaff)
		{
			rates.POST("", h.CreateEmployment)
			rates.POST("/:id/rates", h.RecordRateChange)
			rates.GET("/:id/rates", h.RateHistory)
		}
		api.GET("/rates/export", companyStaff, h.ExportRates)

		users := api.Group("/users", middleware.RequireRole(h.userService, models.RoleSuperAdmin))
		{
			users.POST("", h.CreateUser)
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
		}
	}
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		middleware.Fail(c, apierr.InvalidErr("Invalid "+name, map[string]string{name: "must be a positive integer"}))
		return 0, false
	}
	return uint(id), true
}

// requestScope limits a request to what the current user may see: clients
// their own orders, company staff their company's lines, admins everything.
func requestScope(c *gin.Context) (services.Scope, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return services.Scope{}, apierr.New(apierr.Unauthorized, "Authentication required")
	}
	switch models.UserRole(user.Role) {
	case models.RoleSiteAdmin, models.RoleSuperAdmin:
		return services.Scope{}, nil
	case models.RoleClient:
		return services.Scope{ClientID: user.ID}, nil
	}
	if user.CompanyID == nil {
		return services.Scope{}, apierr.ForbiddenErr("User is not assigned to a company")
	}
	return services.Scope{CompanyID: *user.CompanyID}, nil
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Fail(c, apierr.InvalidErr("Invalid request format", FromBindError(err, dst)))
		return false
	}
	return true
}
