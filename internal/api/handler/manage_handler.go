package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// ManageHandler serves the self-service routes behind a manage token. The
// token in the URL is the only credential; there is no session.
type ManageHandler struct {
	signupSvc   service.SignupService
	calendarSvc service.CalendarService
}

// NewManageHandler creates a ManageHandler.
func NewManageHandler(signupSvc service.SignupService, calendarSvc service.CalendarService) *ManageHandler {
	return &ManageHandler{signupSvc: signupSvc, calendarSvc: calendarSvc}
}

// Get shows the registration behind the manage link.
// GET /api/v1/manage/:token
func (h *ManageHandler) Get(c *gin.Context) {
	reg, err := h.signupSvc.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, reg)
}

// Update replaces the registration's desired state. An empty participant
// list cancels it.
// PUT /api/v1/manage/:token
func (h *ManageHandler) Update(c *gin.Context) {
	var req dto.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	reg, err := h.signupSvc.UpdateByToken(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, reg)
}

// OptOut stops all future mail to the contact.
// POST /api/v1/manage/:token/opt-out
func (h *ManageHandler) OptOut(c *gin.Context) {
	if err := h.signupSvc.OptOutByToken(c.Request.Context(), c.Param("token")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"message": "you will not receive further email for this registration"})
}

// Calendar streams the registration's assignments as an iCalendar feed.
// GET /api/v1/manage/:token/calendar.ics
func (h *ManageHandler) Calendar(c *gin.Context) {
	feed, err := h.calendarSvc.FeedByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="signup.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
