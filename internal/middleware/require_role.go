package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"moving_ops/internal/apierr"
	"moving_ops/internal/models"
)

const (
	HeaderUserID = "X-User-ID"
	CtxKeyUserID = "user_id"
	CtxKeyUser   = "user"
)

// RoleChecker resolves a user and verifies it holds one of the roles.
type RoleChecker interface {
	ValidateUserRole(ctx context.Context, userID uint, roles ...models.UserRole) (*models.User, error)
}

// RequireRole lets the request through only when the X-User-ID header names
// an active user with one of roles.
func RequireRole(checker RoleChecker, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderUserID)
		id, err := strconv.ParseUint(raw, 10, 64)
		if raw == "" || err != nil || id == 0 {
			Fail(c, apierr.New(apierr.Unauthorized, "Authentication required"))
			return
		}

		user, err := checker.ValidateUserRole(c.Request.Context(), uint(id), roles...)
		if err != nil {
			Fail(c, err)
			return
		}

		c.Set(CtxKeyUserID, user.ID)
		c.Set(CtxKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireRole.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
