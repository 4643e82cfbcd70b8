package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/config"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/api/handler"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/api/middleware"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/jwt"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/redis"
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── Global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── Health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// Auth (no credential yet)
		v1.POST("/auth/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)

		// Public event and signup routes
		events := v1.Group("/events")
		{
			events.GET("", h.Event.ListEvents)
			events.GET("/:id", h.Event.GetEvent)
			events.POST("/:id/signups", middleware.RateLimit(rdb, 20, time.Minute), h.Signup.Submit)
			events.POST("/:id/remind", middleware.RateLimit(rdb, 5, time.Minute), h.Signup.Remind)
		}

		// Self-service routes; the manage token in the URL is the credential
		manage := v1.Group("/manage")
		{
			manage.GET("/:token", h.Manage.Get)
			manage.PUT("/:token", h.Manage.Update)
			manage.POST("/:token/opt-out", h.Manage.OptOut)
			manage.GET("/:token/calendar.ics", h.Manage.Calendar)
		}

		// Admin console routes
		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(jwtMgr))
		{
			adminEvents := admin.Group("/events")
			{
				adminEvents.POST("", h.Event.CreateEvent)
				adminEvents.GET("/:id", h.Event.GetEventAdmin)
				adminEvents.PUT("/:id", h.Event.UpdateEvent)
				adminEvents.DELETE("/:id", h.Event.DeleteEvent)
				adminEvents.GET("/:id/registrations", h.Event.ListRegistrations)
				adminEvents.POST("/:id/registrations", h.Signup.AdminAdd)
				adminEvents.POST("/:id/merge", h.Signup.MergeDuplicates)
				adminEvents.GET("/:id/export", h.Export.ExportRoster)
				adminEvents.POST("/:id/stations", h.Station.CreateStation)
			}

			stations := admin.Group("/stations")
			{
				stations.PUT("/:id", h.Station.UpdateStation)
				stations.DELETE("/:id", h.Station.DeleteStation)
				stations.POST("/:id/slots", h.Station.CreateSlot)
			}

			slots := admin.Group("/slots")
			{
				slots.PUT("/:id", h.Station.UpdateSlot)
				slots.DELETE("/:id", h.Station.DeleteSlot)
			}
		}
	}

	return r
}
