package handlers

import (
	"net/http"

	"moving_ops/internal/middleware"
	"moving_ops/internal/models"

	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	CompanyID   *uint  `json:"company_id"`
}

func (h *APIHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		CompanyID:   req.CompanyID,
	}
	if err := h.userService.CreateUser(c.Request.Context(), user, req.Password); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *APIHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.GetUsersByRole(c.Request.Context(), models.UserRole(c.DefaultQuery("role", string(models.RoleClient))))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func (h *APIHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
