package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// StationHandler serves admin station and slot routes.
type StationHandler struct {
	eventSvc service.EventService
}

// NewStationHandler creates a StationHandler.
func NewStationHandler(eventSvc service.EventService) *StationHandler {
	return &StationHandler{eventSvc: eventSvc}
}

// CreateStation adds a station to an event.
// POST /api/v1/admin/events/:id/stations
func (h *StationHandler) CreateStation(c *gin.Context) {
	var req dto.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	station, err := h.eventSvc.CreateStation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, station)
}

// UpdateStation patches station fields.
// PUT /api/v1/admin/stations/:id
func (h *StationHandler) UpdateStation(c *gin.Context) {
	var req dto.UpdateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	station, err := h.eventSvc.UpdateStation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, station)
}

// DeleteStation removes a station and its slots.
// DELETE /api/v1/admin/stations/:id
func (h *StationHandler) DeleteStation(c *gin.Context) {
	if err := h.eventSvc.DeleteStation(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateSlot adds a slot to a station.
// POST /api/v1/admin/stations/:id/slots
func (h *StationHandler) CreateSlot(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	slot, err := h.eventSvc.CreateSlot(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, slot)
}

// UpdateSlot patches slot fields; shrinking capacity below the reserved
// count is allowed and only blocks further signups.
// PUT /api/v1/admin/slots/:id
func (h *StationHandler) UpdateSlot(c *gin.Context) {
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	slot, err := h.eventSvc.UpdateSlot(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteSlot removes a slot and its assignments.
// DELETE /api/v1/admin/slots/:id
func (h *StationHandler) DeleteSlot(c *gin.Context) {
	if err := h.eventSvc.DeleteSlot(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
