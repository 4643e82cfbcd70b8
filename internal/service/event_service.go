package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/config"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/dto"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
	pkgerr "github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/errors"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/pkg/redis"
)

// ── Event module errors ──

var (
	ErrEventNotFound   = fmt.Errorf("event not found: %w", pkgerr.ErrNotFound)
	ErrStationNotFound = fmt.Errorf("station not found: %w", pkgerr.ErrNotFound)
	ErrSlotNotFound    = fmt.Errorf("slot not found: %w", pkgerr.ErrNotFound)
)

// EventService covers event, station and slot administration plus the
// public event views.
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, id string) error
	// Get is the admin view: any publish state.
	Get(ctx context.Context, id string) (*dto.EventResponse, error)
	// GetPublic hides drafts and runs housekeeping before building the view.
	GetPublic(ctx context.Context, id string) (*dto.EventResponse, error)
	ListPublished(ctx context.Context) ([]dto.EventBrief, error)
	ListRegistrations(ctx context.Context, eventID string) ([]dto.RegistrationBrief, error)

	CreateStation(ctx context.Context, eventID string, req *dto.CreateStationRequest) (*dto.StationResponse, error)
	UpdateStation(ctx context.Context, id string, req *dto.UpdateStationRequest) (*dto.StationResponse, error)
	DeleteStation(ctx context.Context, id string) error

	CreateSlot(ctx context.Context, stationID string, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)
	UpdateSlot(ctx context.Context, id string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error)
	DeleteSlot(ctx context.Context, id string) error
}

type eventService struct {
	repo   *repository.Repository
	cache  *redis.Client
	cfg    *config.Config
	logger *zap.Logger
}

// NewEventService creates an EventService. cache may be nil.
func NewEventService(cfg *config.Config, repo *repository.Repository, cache *redis.Client, logger *zap.Logger) EventService {
	return &eventService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// ── Event CRUD ──

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	startsAt, endsAt, err := parseTimeRange(req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, err
	}
	event := &model.Event{
		Title:        req.Title,
		Description:  req.Description,
		SignupMode:   req.SignupMode,
		PublishState: model.PublishStateDraft,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
	}
	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("create event failed", zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, event.EventID)
}

func (s *eventService) Update(ctx context.Context, id string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.PublishState != nil {
		event.PublishState = *req.PublishState
	}
	if req.StartsAt != nil || req.EndsAt != nil {
		startsAt, endsAt, err := parseTimeRange(req.StartsAt, req.EndsAt)
		if err != nil {
			return nil, err
		}
		if req.StartsAt != nil {
			event.StartsAt = startsAt
		}
		if req.EndsAt != nil {
			event.EndsAt = endsAt
		}
	}
	if err := s.repo.Event.Update(ctx, event); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Event.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if err := s.repo.Event.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateOccupancy(ctx, id)
	return nil
}

func (s *eventService) Get(ctx context.Context, id string) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetWithStations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	reserved, err := s.occupancy(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEventResponse(event, reserved), nil
}

func (s *eventService) GetPublic(ctx context.Context, id string) (*dto.EventResponse, error) {
	s.housekeep(ctx, id)
	resp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.PublishState == model.PublishStateDraft {
		return nil, ErrEventNotFound
	}
	return resp, nil
}

func (s *eventService) ListPublished(ctx context.Context) ([]dto.EventBrief, error) {
	events, err := s.repo.Event.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	briefs := make([]dto.EventBrief, 0, len(events))
	for i := range events {
		briefs = append(briefs, dto.EventBrief{
			ID:         events[i].EventID,
			Title:      events[i].Title,
			SignupMode: events[i].SignupMode,
			StartsAt:   fmtTime(events[i].StartsAt),
			EndsAt:     fmtTime(events[i].EndsAt),
		})
	}
	return briefs, nil
}

func (s *eventService) ListRegistrations(ctx context.Context, eventID string) ([]dto.RegistrationBrief, error) {
	if _, err := s.repo.Event.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	regs, err := s.repo.Registration.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	briefs := make([]dto.RegistrationBrief, 0, len(regs))
	for i := range regs {
		briefs = append(briefs, toRegistrationBrief(&regs[i]))
	}
	return briefs, nil
}

// ── Station CRUD ──

func (s *eventService) CreateStation(ctx context.Context, eventID string, req *dto.CreateStationRequest) (*dto.StationResponse, error) {
	if _, err := s.repo.Event.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	maxPos, err := s.repo.Station.MaxPosition(ctx, eventID)
	if err != nil {
		return nil, err
	}
	station := &model.Station{
		EventID:     eventID,
		Name:        req.Name,
		Description: req.Description,
		Position:    maxPos + 1,
	}
	if err := s.repo.Station.Create(ctx, station); err != nil {
		return nil, err
	}
	resp := toStationResponse(station, nil, nil)
	return &resp, nil
}

func (s *eventService) UpdateStation(ctx context.Context, id string, req *dto.UpdateStationRequest) (*dto.StationResponse, error) {
	station, err := s.repo.Station.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.Description != nil {
		station.Description = *req.Description
	}
	if req.Position != nil {
		station.Position = *req.Position
	}
	if err := s.repo.Station.Update(ctx, station); err != nil {
		return nil, err
	}
	slots, err := s.repo.Slot.ListByEvent(ctx, station.EventID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.occupancy(ctx, station.EventID)
	if err != nil {
		return nil, err
	}
	resp := toStationResponse(station, stationSlots(slots, station.StationID), reserved)
	return &resp, nil
}

func (s *eventService) DeleteStation(ctx context.Context, id string) error {
	station, err := s.repo.Station.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStationNotFound
		}
		return err
	}
	if err := s.repo.Station.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateOccupancy(ctx, station.EventID)
	return nil
}

// ── Slot CRUD ──

func (s *eventService) CreateSlot(ctx context.Context, stationID string, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	station, err := s.repo.Station.GetByID(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	event, err := s.repo.Event.GetByID(ctx, station.EventID)
	if err != nil {
		return nil, err
	}
	startsAt, endsAt, err := parseTimeRange(req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, err
	}
	slot := &model.Slot{
		StationID:      stationID,
		CapacityNeeded: req.CapacityNeeded,
		StartsAt:       startsAt,
		EndsAt:         endsAt,
		Title:          req.Title,
		ServesMin:      req.ServesMin,
		ServesMax:      req.ServesMax,
	}
	if err := validateSlot(event, slot); err != nil {
		return nil, err
	}
	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		return nil, err
	}
	s.invalidateOccupancy(ctx, station.EventID)
	resp := toSlotResponse(slot, 0)
	return &resp, nil
}

func (s *eventService) UpdateSlot(ctx context.Context, id string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	slot, err := s.repo.Slot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	event, err := s.repo.Event.GetByID(ctx, slot.Station.EventID)
	if err != nil {
		return nil, err
	}
	if req.CapacityNeeded != nil {
		slot.CapacityNeeded = *req.CapacityNeeded
	}
	if req.StartsAt != nil || req.EndsAt != nil {
		startsAt, endsAt, err := parseTimeRange(req.StartsAt, req.EndsAt)
		if err != nil {
			return nil, err
		}
		if req.StartsAt != nil {
			slot.StartsAt = startsAt
		}
		if req.EndsAt != nil {
			slot.EndsAt = endsAt
		}
	}
	if req.Title != nil {
		slot.Title = *req.Title
	}
	if req.ServesMin != nil {
		slot.ServesMin = *req.ServesMin
	}
	if req.ServesMax != nil {
		slot.ServesMax = *req.ServesMax
	}
	if err := validateSlot(event, slot); err != nil {
		return nil, err
	}
	if err := s.repo.Slot.Update(ctx, slot); err != nil {
		return nil, err
	}
	s.invalidateOccupancy(ctx, event.EventID)

	reserved, err := s.occupancy(ctx, event.EventID)
	if err != nil {
		return nil, err
	}
	// Shrinking capacity below the reserved count is allowed; existing
	// holdings stay, only net increases are refused from here on.
	if reserved[slot.SlotID] > slot.CapacityNeeded {
		s.logger.Warn("slot capacity below reserved count",
			zap.String("slot_id", slot.SlotID),
			zap.Int("capacity", slot.CapacityNeeded),
			zap.Int("reserved", reserved[slot.SlotID]))
	}
	resp := toSlotResponse(slot, reserved[slot.SlotID])
	return &resp, nil
}

func (s *eventService) DeleteSlot(ctx context.Context, id string) error {
	slot, err := s.repo.Slot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	if err := s.repo.Slot.Delete(ctx, id); err != nil {
		return err
	}
	if slot.Station != nil {
		s.invalidateOccupancy(ctx, slot.Station.EventID)
	}
	return nil
}

// ── Occupancy read model ──

// occupancy returns the slot→reserved map for an event, served from the
// cache when possible. Cache trouble degrades to a direct count.
func (s *eventService) occupancy(ctx context.Context, eventID string) (map[string]int, error) {
	if s.cache != nil {
		counts, err := s.cache.GetOccupancy(ctx, eventID)
		if err != nil {
			s.logger.Warn("occupancy cache read failed", zap.String("event_id", eventID), zap.Error(err))
		} else if counts != nil {
			return counts, nil
		}
	}
	counts, err := s.repo.Assignment.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetOccupancy(ctx, eventID, counts, s.cfg.Signup.OccupancyCacheTTL); err != nil {
			s.logger.Warn("occupancy cache write failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return counts, nil
}

func (s *eventService) invalidateOccupancy(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOccupancy(ctx, eventID); err != nil {
		s.logger.Warn("invalidate occupancy cache failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

// housekeep clears expired manage tokens and sweeps empty registrations.
// Runs inline before public reads; failures are logged, never surfaced.
func (s *eventService) housekeep(ctx context.Context, eventID string) {
	if n, err := s.repo.Registration.ClearExpiredTokens(ctx, time.Now()); err != nil {
		s.logger.Warn("clear expired tokens failed", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("cleared expired manage tokens", zap.Int64("count", n))
	}
	if n, err := s.repo.Registration.DeleteEmpty(ctx, eventID); err != nil {
		s.logger.Warn("sweep empty registrations failed", zap.String("event_id", eventID), zap.Error(err))
	} else if n > 0 {
		s.logger.Info("swept empty registrations", zap.String("event_id", eventID), zap.Int64("count", n))
	}
}

// ── Validation and mapping helpers ──

func parseTimeRange(startsAt, endsAt *string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startsAt != nil && *startsAt != "" {
		t, err := time.Parse(time.RFC3339, *startsAt)
		if err != nil {
			return nil, nil, pkgerr.Validationf("starts_at must be RFC3339")
		}
		start = &t
	}
	if endsAt != nil && *endsAt != "" {
		t, err := time.Parse(time.RFC3339, *endsAt)
		if err != nil {
			return nil, nil, pkgerr.Validationf("ends_at must be RFC3339")
		}
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, pkgerr.Validationf("starts_at must be before ends_at")
	}
	return start, end, nil
}

func validateSlot(event *model.Event, slot *model.Slot) error {
	if slot.CapacityNeeded < 1 {
		return pkgerr.Validationf("capacity_needed must be at least 1")
	}
	if event.IsPotluck() {
		if slot.Title == "" {
			return pkgerr.Validationf("potluck slots need a title")
		}
		if slot.ServesMin > slot.ServesMax {
			return pkgerr.Validationf("serves_min must not exceed serves_max")
		}
		return nil
	}
	if !slot.HasTimeRange() {
		return pkgerr.Validationf("schedule slots need starts_at and ends_at")
	}
	if !slot.StartsAt.Before(*slot.EndsAt) {
		return pkgerr.Validationf("starts_at must be before ends_at")
	}
	return nil
}

func toEventResponse(event *model.Event, reserved map[string]int) *dto.EventResponse {
	stations := make([]dto.StationResponse, 0, len(event.Stations))
	for i := range event.Stations {
		st := &event.Stations[i]
		slots := make([]*model.Slot, 0, len(st.Slots))
		for j := range st.Slots {
			slots = append(slots, &st.Slots[j])
		}
		stations = append(stations, toStationResponse(st, slots, reserved))
	}
	return &dto.EventResponse{
		ID:           event.EventID,
		Title:        event.Title,
		Description:  event.Description,
		SignupMode:   event.SignupMode,
		PublishState: event.PublishState,
		StartsAt:     fmtTime(event.StartsAt),
		EndsAt:       fmtTime(event.EndsAt),
		Stations:     stations,
		CreatedAt:    event.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    event.UpdatedAt.Format(time.RFC3339),
	}
}

func toStationResponse(station *model.Station, slots []*model.Slot, reserved map[string]int) dto.StationResponse {
	out := make([]dto.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toSlotResponse(slot, reserved[slot.SlotID]))
	}
	return dto.StationResponse{
		ID:          station.StationID,
		Name:        station.Name,
		Description: station.Description,
		Position:    station.Position,
		Slots:       out,
	}
}

func toSlotResponse(slot *model.Slot, reserved int) dto.SlotResponse {
	remaining := slot.CapacityNeeded - reserved
	if remaining < 0 {
		remaining = 0
	}
	return dto.SlotResponse{
		ID:             slot.SlotID,
		CapacityNeeded: slot.CapacityNeeded,
		Reserved:       reserved,
		Remaining:      remaining,
		StartsAt:       fmtTime(slot.StartsAt),
		EndsAt:         fmtTime(slot.EndsAt),
		Title:          slot.Title,
		ServesMin:      slot.ServesMin,
		ServesMax:      slot.ServesMax,
	}
}

func stationSlots(slots []model.Slot, stationID string) []*model.Slot {
	var out []*model.Slot
	for i := range slots {
		if slots[i].StationID == stationID {
			out = append(out, &slots[i])
		}
	}
	return out
}

func toRegistrationBrief(reg *model.Registration) dto.RegistrationBrief {
	participants := make([]dto.ParticipantDetail, 0, len(reg.Participants))
	for i := range reg.Participants {
		p := &reg.Participants[i]
		assignments := make([]dto.AssignmentDetail, 0, len(p.Assignments))
		for j := range p.Assignments {
			a := &p.Assignments[j]
			assignments = append(assignments, dto.AssignmentDetail{
				SlotID:   a.SlotID,
				DishName: a.DishName,
			})
		}
		participants = append(participants, dto.ParticipantDetail{
			ID:          p.ParticipantID,
			Name:        p.Name,
			Assignments: assignments,
		})
	}
	return dto.RegistrationBrief{
		ID:           reg.RegistrationID,
		ContactName:  reg.ContactName,
		ContactEmail: reg.ContactEmail,
		ContactPhone: reg.ContactPhone,
		EmailOptIn:   reg.EmailOptIn,
		Participants: participants,
		CreatedAt:    reg.CreatedAt.Format(time.RFC3339),
	}
}
