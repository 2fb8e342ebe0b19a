package handlers

import (
	"net/http"

	"moving_ops/internal/apierr"
	"moving_ops/internal/middleware"
	"moving_ops/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) FinanceReport(c *gin.Context) {
	var q services.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, invalidQuery(err, &q))
		return
	}

	report, err := h.financeService.Report(c.Request.Context(), q)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) CreateTransaction(c *gin.Context) {
	var req services.NewTransaction
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.financeService.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func invalidQuery(err error, dst interface{}) error {
	return apierr.InvalidErr("Invalid query", FromBindError(err, dst))
}
