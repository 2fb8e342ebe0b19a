package handlers

import (
	"log/slog"

	"moving_ops/internal/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the middleware chain and API routes.
func NewRouter(l *slog.Logger, h *APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(l),
		middleware.ErrorHandler(l),
		middleware.Recovery(l),
	)
	h.RegisterRoutes(router)
	return router
}
