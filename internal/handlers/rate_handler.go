package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"moving_ops/internal/apierr"
	"moving_ops/internal/middleware"
	"moving_ops/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) CreateEmployment(c *gin.Context) {
	var req services.NewEmployment
	if !bindJSON(c, &req) {
		return
	}

	employment, err := h.rateService.CreateEmployment(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, employment)
}

func (h *APIHandler) RecordRateChange(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.RateUpdate
	if !bindJSON(c, &req) {
		return
	}
	if user, ok := middleware.CurrentUser(c); ok {
		req.ChangedBy = user.ID
	}

	change, err := h.rateService.RecordRateChange(c.Request.Context(), id, req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, change)
}

func (h *APIHandler) RateHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	history, err := h.rateService.History(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employment_id": id, "history": history})
}

// ExportRates returns the histories of ?ids=1,2,3 keyed by employment id.
func (h *APIHandler) ExportRates(c *gin.Context) {
	var ids []uint
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			middleware.Fail(c, apierr.InvalidErr("Invalid query", map[string]string{"ids": "must be a comma separated list of ids"}))
			return
		}
		ids = append(ids, uint(id))
	}

	export, err := h.rateService.Export(c.Request.Context(), ids...)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}
