package service

import (
	"context"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/repository"
)

// CalendarService renders a registration's assignments as an iCalendar
// (RFC 5545) feed behind its manage link, so contacts can subscribe from
// their own calendar app. Potluck slots have no time semantics and are
// skipped.
type CalendarService interface {
	FeedByToken(ctx context.Context, token string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	tokens TokenService
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService instance.
func NewCalendarService(repo *repository.Repository, tokens TokenService, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, tokens: tokens, logger: logger}
}

func (s *calendarService) FeedByToken(ctx context.Context, token string) (string, error) {
	reg, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	event, err := s.repo.Event.GetByID(ctx, reg.EventID)
	if err != nil {
		return "", err
	}
	assignments, err := s.repo.Assignment.ListByRegistration(ctx, reg.RegistrationID)
	if err != nil {
		return "", err
	}

	names := make(map[string]string, len(reg.Participants))
	for i := range reg.Participants {
		names[reg.Participants[i].ParticipantID] = reg.Participants[i].Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//volunteer-event-management//EN")
	cal.SetName(event.Title)

	for i := range assignments {
		a := &assignments[i]
		if a.Slot == nil || !a.Slot.HasTimeRange() {
			continue
		}
		entry := cal.AddEvent(a.AssignmentID + "@volunteer-event-management")
		entry.SetCreatedTime(a.CreatedAt)
		entry.SetDtStampTime(a.CreatedAt)
		entry.SetStartAt(*a.Slot.StartsAt)
		entry.SetEndAt(*a.Slot.EndsAt)
		entry.SetSummary(summaryFor(event, a.Slot, names[a.ParticipantID]))
		if a.Slot.Station != nil {
			entry.SetLocation(a.Slot.Station.Name)
		}
	}
	return cal.Serialize(), nil
}

func summaryFor(event *model.Event, slot *model.Slot, participant string) string {
	label := event.Title
	if slot.Station != nil {
		label = fmt.Sprintf("%s · %s", event.Title, slot.Station.Name)
	}
	if participant != "" {
		label = fmt.Sprintf("%s (%s)", label, participant)
	}
	return label
}
