package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// SignupHandler serves the public signup flow plus the admin registration
// operations that share its semantics.
type SignupHandler struct {
	signupSvc service.SignupService
}

// NewSignupHandler creates a SignupHandler.
func NewSignupHandler(signupSvc service.SignupService) *SignupHandler {
	return &SignupHandler{signupSvc: signupSvc}
}

// Submit handles the public signup form.
// POST /api/v1/events/:id/signups
func (h *SignupHandler) Submit(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.signupSvc.Submit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if result.AlreadyExisted {
		response.OK(c, result)
		return
	}
	response.Created(c, result)
}

// Remind re-sends the manage link. The response never reveals whether the
// email is registered.
// POST /api/v1/events/:id/remind
func (h *SignupHandler) Remind(c *gin.Context) {
	var req dto.RemindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	if err := h.signupSvc.Remind(c.Request.Context(), c.Param("id"), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "if that email has a registration, a manage link is on its way"})
}

// AdminAdd registers a contact on their behalf.
// POST /api/v1/admin/events/:id/registrations
func (h *SignupHandler) AdminAdd(c *gin.Context) {
	var req dto.AdminAddRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.signupSvc.AdminAdd(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, result)
}

// MergeDuplicates folds a contact's duplicate registrations into one.
// POST /api/v1/admin/events/:id/merge
func (h *SignupHandler) MergeDuplicates(c *gin.Context) {
	var req dto.MergeDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.signupSvc.MergeDuplicates(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, result)
}
