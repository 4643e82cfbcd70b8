package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/service"
	pkgerr "github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/errors"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/response"
)

// Handler is the aggregate entry point for all HTTP handlers.
type Handler struct {
	Auth    *AuthHandler
	Event   *EventHandler
	Station *StationHandler
	Signup  *SignupHandler
	Manage  *ManageHandler
	Export  *ExportHandler
}

// NewHandler creates the Handler aggregate.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Event:   NewEventHandler(svc.Event),
		Station: NewStationHandler(svc.Event),
		Signup:  NewSignupHandler(svc.Signup),
		Manage:  NewManageHandler(svc.Signup, svc.Calendar),
		Export:  NewExportHandler(svc.Export),
	}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, not found 404, allocation conflict 409, dead manage
// link 410, anything else 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case pkgerr.IsValidation(err):
		response.BadRequest(c, 10001, err.Error())
	case pkgerr.IsNotFound(err):
		response.NotFound(c, 20001, err.Error())
	case pkgerr.IsConflict(err):
		response.Conflict(c, 20002, err.Error())
	case pkgerr.IsGone(err):
		response.Gone(c, 20003, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 10002, err.Error())
	default:
		response.InternalError(c)
	}
}
