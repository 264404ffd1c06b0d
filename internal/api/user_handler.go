package api

import (
	"fmt"
	"net/http"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := resolveUserID(c, c.Param("id"))
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Error fetching user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /users/:id/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := resolveUserID(c, c.Param("id"))
	if !ok {
		return
	}

	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, profile)
	if err != nil {
		respondError(c, err, "Error updating profile")
		return
	}
	c.JSON(http.StatusOK, user)
}
