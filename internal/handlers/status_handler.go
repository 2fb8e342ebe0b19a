package handlers

import (
	"net/http"
	"sort"

	"moving_ops/internal/status"

	"github.com/gin-gonic/gin"
)

// MapStatus shows how a UI status is stored and displayed.
func (h *APIHandler) MapStatus(c *gin.Context) {
	s := c.Query("status")
	locale := c.DefaultQuery("locale", h.defaultLocale)

	var translate func(string) string
	if h.catalog != nil {
		translate = h.catalog.Translator(locale)
	}
	res := status.Resolve(s)

	c.JSON(http.StatusOK, gin.H{
		"status":    s,
		"canonical": res.Status,
		"known":     res.Known,
		"label":     status.TranslatedLabel(s, translate),
		"color":     status.Color(s),
	})
}

type statusLabel struct {
	Status    string `json:"status"`
	Canonical string `json:"canonical"`
	Label     string `json:"label"`
	Color     string `json:"color"`
}

// StatusLabels lists the display label and color of every UI status for a
// locale, plus the canonical filter options.
func (h *APIHandler) StatusLabels(c *gin.Context) {
	locale := c.DefaultQuery("locale", h.defaultLocale)

	var (
		translate func(string) string
		locales   []string
	)
	if h.catalog != nil {
		translate = h.catalog.Translator(locale)
		locales = h.catalog.Locales()
		sort.Strings(locales)
	}

	labels := make([]statusLabel, 0, len(status.AllUI()))
	for _, s := range status.AllUI() {
		labels = append(labels, statusLabel{
			Status:    string(s),
			Canonical: string(status.MapToBackend(string(s))),
			Label:     status.TranslatedLabel(string(s), translate),
			Color:     status.Color(string(s)),
		})
	}

	filters := make([]statusLabel, 0, len(status.AllCanonical()))
	for _, s := range status.AllCanonical() {
		filters = append(filters, statusLabel{
			Status:    string(s),
			Canonical: string(s),
			Label:     status.TranslatedLabel(string(s), translate),
			Color:     status.Color(string(s)),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"locale":  locale,
		"locales": locales,
		"labels":  labels,
		"filters": filters,
	})
}
