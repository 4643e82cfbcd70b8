package service

import (
	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/config"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/jwt"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/redis"
)

// Service is the aggregate entry point for all services.
type Service struct {
	Auth     AuthService
	Event    EventService
	Signup   SignupService
	Export   ExportService
	Calendar CalendarService
}

// NewService creates the Service aggregate. notifier and cache may be nil;
// the signup flow then skips mail and serves occupancy straight from the
// database.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	notifier Notifier,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	tokens := NewTokenService(repo, cfg.Signup.ManageTokenTTLDays, logger)
	return &Service{
		Auth:     NewAuthService(cfg, jwtMgr, logger),
		Event:    NewEventService(cfg, repo, cache, logger),
		Signup:   NewSignupService(cfg, repo, tokens, notifier, cache, logger),
		Export:   NewExportService(repo, logger),
		Calendar: NewCalendarService(repo, tokens, logger),
	}
}
