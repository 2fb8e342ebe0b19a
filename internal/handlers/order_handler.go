package handlers

import (
	"net/http"

	"moving_ops/internal/apierr"
	"moving_ops/internal/middleware"
	"moving_ops/internal/orders"
	"moving_ops/internal/services"
	"moving_ops/internal/status"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) CreateOrder(c *gin.Context) {
	var view orders.View
	if !bindJSON(c, &view) {
		return
	}
	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if scope.ClientID != 0 {
		view.ClientID = scope.ClientID
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), view)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

type listOrdersQuery struct {
	Status    string `form:"status"`
	ClientID  uint   `form:"client_id"`
	CompanyID uint   `form:"company_id"`
}

func (h *APIHandler) ListOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, invalidQuery(err, &q))
		return
	}
	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	// only admins pick the scope through the query
	if scope == (services.Scope{}) {
		scope = services.Scope{ClientID: q.ClientID, CompanyID: q.CompanyID}
	}

	list, err := h.orderService.ListOrders(c.Request.Context(), scope, q.Status)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

func (h *APIHandler) OrderStats(c *gin.Context) {
	stats, err := h.orderService.OrderStats(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), scope, id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) AssignCompany(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		CompanyID uint `json:"company_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.AssignCompany(c.Request.Context(), id, req.CompanyID)
	respondOrder(c, order, err)
}

func (h *APIHandler) SendOffer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Price float64 `json:"price" binding:"required,gt=0"`
		Notes string  `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}

	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	order, err := h.orderService.SendOffer(c.Request.Context(), scope, id, req.Price, req.Notes)
	respondOrder(c, order, err)
}

func (h *APIHandler) RespondToOffer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	order, err := h.orderService.RespondToOffer(c.Request.Context(), scope, id, *req.Accept)
	respondOrder(c, order, err)
}

func (h *APIHandler) UpdateLineStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	order, err := h.orderService.UpdateLineStatus(c.Request.Context(), scope, id, status.UI(req.Status))
	respondOrder(c, order, err)
}

func (h *APIHandler) ScheduleOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time"`
	}
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Schedule(c.Request.Context(), id, req.Date, req.Time)
	respondOrder(c, order, err)
}

func (h *APIHandler) CompleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Complete(c.Request.Context(), id)
	respondOrder(c, order, err)
}

func (h *APIHandler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Cancel(c.Request.Context(), id)
	respondOrder(c, order, err)
}

func (h *APIHandler) CompanyOffers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	scope, err := requestScope(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if scope.CompanyID != 0 && scope.CompanyID != id {
		middleware.Fail(c, apierr.ForbiddenErr("Offers of another company"))
		return
	}
	offers, err := h.orderService.CompanyOffers(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers, "count": len(offers)})
}

func respondOrder(c *gin.Context, order *orders.View, err error) {
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *APIHandler) ListServices(c *gin.Context) {
	list, err := h.orderService.Services(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}
