package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// AuthHandler serves admin console authentication.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login signs the coordinator in.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	tokens, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, tokens)
}
