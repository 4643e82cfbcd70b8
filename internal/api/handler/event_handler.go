package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// EventHandler serves event routes, public and admin.
type EventHandler struct {
	eventSvc service.EventService
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(eventSvc service.EventService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// ── Public routes ──

// ListEvents lists published events.
// GET /api/v1/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventSvc.ListPublished(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// GetEvent returns the public event view with live occupancy. Draft events
// stay hidden.
// GET /api/v1/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventSvc.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, event)
}

// ── Admin routes ──

// GetEventAdmin returns any event regardless of publish state.
// GET /api/v1/admin/events/:id
func (h *EventHandler) GetEventAdmin(c *gin.Context) {
	event, err := h.eventSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, event)
}

// CreateEvent creates a draft event.
// POST /api/v1/admin/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	event, err := h.eventSvc.Create(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent patches event fields, including publish state transitions.
// PUT /api/v1/admin/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	event, err := h.eventSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent removes an event and everything under it.
// DELETE /api/v1/admin/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListRegistrations returns the roster for an event.
// GET /api/v1/admin/events/:id/registrations
func (h *EventHandler) ListRegistrations(c *gin.Context) {
	regs, err := h.eventSvc.ListRegistrations(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": regs})
}
