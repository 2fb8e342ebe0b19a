package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"moving_ops/internal/apierr"
)

// Fail records err on the context and stops the chain. ErrorHandler renders it.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error of the request as
// {"message", "data", "request_id"}.
func ErrorHandler(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apierr.HTTPStatus(err)
		message, data := apierr.Body(err)
		rid := GetRequestID(c)

		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}
		l.LogAttrs(c.Request.Context(), level, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		c.AbortWithStatusJSON(status, gin.H{
			"message":    message,
			"data":       data,
			"request_id": rid,
		})
	}
}
