package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// ── Signup module errors ──

var (
	ErrRegistrationNotFound = fmt.Errorf("registration not found: %w", pkgerr.ErrNotFound)
)

// SignupService is the allocation façade: every public registration
// operation enters here and runs as one transaction over the locked slots.
type SignupService interface {
	// Submit handles a public signup form submission. If the contact already
	// has a registration for the event the submission folds into it instead
	// of creating a duplicate.
	Submit(ctx context.Context, eventID string, req *dto.SignupRequest) (*dto.SignupResponse, error)
	// AdminAdd registers a contact on their behalf; draft events are allowed
	// and notification can be suppressed.
	AdminAdd(ctx context.Context, eventID string, req *dto.AdminAddRegistrationRequest) (*dto.SignupResponse, error)
	// Remind re-sends the manage link. Never reveals whether the email is
	// registered.
	Remind(ctx context.Context, eventID, email string) error
	// GetByToken returns the self-service view behind a manage link.
	GetByToken(ctx context.Context, token string) (*dto.RegistrationResponse, error)
	// UpdateByToken replaces the registration's desired state. An empty
	// participant list cancels the registration.
	UpdateByToken(ctx context.Context, token string, req *dto.UpdateRegistrationRequest) (*dto.RegistrationResponse, error)
	// OptOutByToken stops all future mail to the registration's contact.
	OptOutByToken(ctx context.Context, token string) error
	// MergeDuplicates folds all registrations of one contact email into a
	// single survivor.
	MergeDuplicates(ctx context.Context, eventID string, req *dto.MergeDuplicatesRequest) (*dto.MergeDuplicatesResponse, error)
}

type signupService struct {
	repo     *repository.Repository
	tokens   TokenService
	notifier Notifier
	cache    *redis.Client
	cfg      *config.Config
	logger   *zap.Logger
}

// NewSignupService creates a SignupService. notifier and cache may be nil.
func NewSignupService(cfg *config.Config, repo *repository.Repository, tokens TokenService, notifier Notifier, cache *redis.Client, logger *zap.Logger) SignupService {
	return &signupService{repo: repo, tokens: tokens, notifier: notifier, cache: cache, cfg: cfg, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Submit — merge-first fold, lock, check, reconcile
// ════════════════════════════════════════════════════════════

func (s *signupService) Submit(ctx context.Context, eventID string, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	return s.submit(ctx, eventID, req, false, false)
}

func (s *signupService) AdminAdd(ctx context.Context, eventID string, req *dto.AdminAddRegistrationRequest) (*dto.SignupResponse, error) {
	return s.submit(ctx, eventID, &req.SignupRequest, true, req.SkipNotify)
}

func (s *signupService) submit(ctx context.Context, eventID string, req *dto.SignupRequest, adminCaller, skipNotify bool) (*dto.SignupResponse, error) {
	incoming, err := normalizeDesired(req.Participants)
	if err != nil {
		return nil, err
	}
	if len(desiredSlotIDs(incoming)) == 0 {
		// A submission must claim something. Releasing everything is the
		// manage link's job, not the signup form's.
		return nil, pkgerr.Validationf("at least one slot choice is required")
	}

	var (
		reg            *model.Registration
		event          *model.Event
		alreadyExisted bool
	)
	err = s.repo.Tx.WithTransaction(ctx, func(txRepo *repository.Repository) error {
		event, err = txRepo.Event.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if !adminCaller && event.PublishState == model.PublishStateDraft {
			// Draft events are invisible to the public form.
			return ErrEventNotFound
		}

		// Fold any transient duplicates for this contact first, so the rest
		// of the submission sees exactly one registration.
		group, err := txRepo.Registration.ListByEventAndEmail(ctx, eventID, req.ContactEmail)
		if err != nil {
			return err
		}
		survivorID, _, err := mergeGroup(ctx, txRepo, group, "", s.logger)
		if err != nil {
			return err
		}

		desired := incoming
		var own map[string]int
		if survivorID != "" {
			alreadyExisted = true
			reg, err = txRepo.Registration.GetByID(ctx, survivorID)
			if err != nil {
				return err
			}
			currentAssignments, err := txRepo.Assignment.ListByRegistration(ctx, survivorID)
			if err != nil {
				return err
			}
			own = ownCounts(currentAssignments)
			desired = unionDesired(currentDesired(reg.Participants, currentAssignments), incoming)
		}

		slotIDs := desiredSlotIDs(desired)
		infos, err := lockSlots(ctx, txRepo, slotIDs)
		if err != nil {
			return err
		}
		if err := checkChoices(eventID, infos, desired); err != nil {
			return err
		}
		reserved, err := txRepo.Assignment.CountBySlots(ctx, slotIDs)
		if err != nil {
			return err
		}
		if err := checkCapacity(infos, reserved, own, desired); err != nil {
			return err
		}

		if reg == nil {
			reg = &model.Registration{
				EventID:      eventID,
				ContactName:  strings.TrimSpace(req.ContactName),
				ContactEmail: strings.TrimSpace(req.ContactEmail),
				ContactPhone: strings.TrimSpace(req.ContactPhone),
				EmailOptIn:   req.EmailOptIn == nil || *req.EmailOptIn,
			}
			if err := txRepo.Registration.Create(ctx, reg); err != nil {
				return err
			}
		} else {
			reg.ContactName = strings.TrimSpace(req.ContactName)
			reg.ContactPhone = strings.TrimSpace(req.ContactPhone)
			if req.EmailOptIn != nil {
				reg.EmailOptIn = *req.EmailOptIn
			}
			if err := txRepo.Registration.Update(ctx, reg); err != nil {
				return err
			}
		}
		return reconcile(ctx, txRepo, reg, desired)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOccupancy(ctx, eventID)

	manageURL := s.issueManageURL(ctx, reg.RegistrationID)
	if manageURL != "" && !skipNotify {
		s.notify(ctx, reg, event, manageURL)
	}
	return &dto.SignupResponse{
		RegistrationID: reg.RegistrationID,
		ManageURL:      manageURL,
		AlreadyExisted: alreadyExisted,
	}, nil
}

func (s *signupService) Remind(ctx context.Context, eventID, email string) error {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	group, err := s.repo.Registration.ListByEventAndEmail(ctx, eventID, email)
	if err != nil {
		return err
	}
	if len(group) == 0 {
		// Deliberately indistinguishable from success.
		return nil
	}
	reg := &group[0]
	manageURL := s.issueManageURL(ctx, reg.RegistrationID)
	if manageURL != "" {
		s.notify(ctx, reg, event, manageURL)
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Manage link operations
// ════════════════════════════════════════════════════════════

func (s *signupService) GetByToken(ctx context.Context, token string) (*dto.RegistrationResponse, error) {
	reg, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.buildRegistrationResponse(ctx, reg)
}

func (s *signupService) UpdateByToken(ctx context.Context, token string, req *dto.UpdateRegistrationRequest) (*dto.RegistrationResponse, error) {
	reg, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	desired, err := normalizeDesired(req.Participants)
	if err != nil {
		return nil, err
	}

	canceled := len(desired) == 0
	err = s.repo.Tx.WithTransaction(ctx, func(txRepo *repository.Repository) error {
		reg, err = txRepo.Registration.GetByID(ctx, reg.RegistrationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrManageTokenUnknown
			}
			return err
		}
		if canceled {
			for i := range reg.Participants {
				if err := txRepo.Assignment.DeleteByParticipant(ctx, reg.Participants[i].ParticipantID); err != nil {
					return err
				}
			}
			if err := txRepo.Participant.DeleteByRegistration(ctx, reg.RegistrationID); err != nil {
				return err
			}
			return txRepo.Registration.Delete(ctx, reg.RegistrationID)
		}

		currentAssignments, err := txRepo.Assignment.ListByRegistration(ctx, reg.RegistrationID)
		if err != nil {
			return err
		}
		slotIDs := desiredSlotIDs(desired)
		infos, err := lockSlots(ctx, txRepo, slotIDs)
		if err != nil {
			return err
		}
		if err := checkChoices(reg.EventID, infos, desired); err != nil {
			return err
		}
		reserved, err := txRepo.Assignment.CountBySlots(ctx, slotIDs)
		if err != nil {
			return err
		}
		if err := checkCapacity(infos, reserved, ownCounts(currentAssignments), desired); err != nil {
			return err
		}

		if req.ContactName != nil {
			reg.ContactName = strings.TrimSpace(*req.ContactName)
		}
		if req.ContactPhone != nil {
			reg.ContactPhone = strings.TrimSpace(*req.ContactPhone)
		}
		if req.EmailOptIn != nil {
			reg.EmailOptIn = *req.EmailOptIn
			if !*req.EmailOptIn && reg.OptedOutAt == nil {
				now := time.Now()
				reg.OptedOutAt = &now
			}
		}
		if err := txRepo.Registration.Update(ctx, reg); err != nil {
			return err
		}
		return reconcile(ctx, txRepo, reg, desired)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOccupancy(ctx, reg.EventID)
	if canceled {
		return &dto.RegistrationResponse{ID: reg.RegistrationID, Participants: []dto.ParticipantDetail{}}, nil
	}
	return s.buildRegistrationResponse(ctx, reg)
}

func (s *signupService) OptOutByToken(ctx context.Context, token string) error {
	reg, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if !reg.EmailOptIn {
		return nil
	}
	now := time.Now()
	reg.EmailOptIn = false
	reg.OptedOutAt = &now
	return s.repo.Registration.Update(ctx, reg)
}

// ════════════════════════════════════════════════════════════
// Admin merge
// ════════════════════════════════════════════════════════════

func (s *signupService) MergeDuplicates(ctx context.Context, eventID string, req *dto.MergeDuplicatesRequest) (*dto.MergeDuplicatesResponse, error) {
	var resp dto.MergeDuplicatesResponse
	err := s.repo.Tx.WithTransaction(ctx, func(txRepo *repository.Repository) error {
		group, err := txRepo.Registration.ListByEventAndEmail(ctx, eventID, req.Email)
		if err != nil {
			return err
		}
		if len(group) == 0 {
			return ErrRegistrationNotFound
		}
		survivorID, merged, err := mergeGroup(ctx, txRepo, group, req.PreferredID, s.logger)
		if err != nil {
			return err
		}
		resp = dto.MergeDuplicatesResponse{SurvivorID: survivorID, Merged: merged}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateOccupancy(ctx, eventID)
	return &resp, nil
}

// ── Helpers ──

// lockSlots locks the slot rows and returns them keyed by id.
func lockSlots(ctx context.Context, txRepo *repository.Repository, slotIDs []string) (map[string]repository.SlotInfo, error) {
	infos, err := txRepo.Slot.InfoForUpdate(ctx, slotIDs)
	if err != nil {
		return nil, err
	}
	m := make(map[string]repository.SlotInfo, len(infos))
	for _, info := range infos {
		m[info.SlotID] = info
	}
	return m, nil
}

// currentDesired rebuilds the desired-state view of what a registration
// already holds, so a fold can union it with the incoming request.
func currentDesired(participants []model.Participant, assignments []model.Assignment) []desiredParticipant {
	byParticipant := make(map[string][]desiredChoice)
	for _, a := range assignments {
		byParticipant[a.ParticipantID] = append(byParticipant[a.ParticipantID], desiredChoice{
			SlotID:   a.SlotID,
			DishName: a.DishName,
		})
	}
	out := make([]desiredParticipant, 0, len(participants))
	for _, p := range participants {
		out = append(out, desiredParticipant{Name: p.Name, Choices: byParticipant[p.ParticipantID]})
	}
	return out
}

// unionDesired overlays incoming on current: participants are merged by
// folded name, slot picks unioned, and an incoming dish name wins over the
// stored one for the same slot.
func unionDesired(current, incoming []desiredParticipant) []desiredParticipant {
	out := make([]desiredParticipant, len(current))
	copy(out, current)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[strings.ToLower(p.Name)] = i
	}
	for _, p := range incoming {
		i, ok := index[strings.ToLower(p.Name)]
		if !ok {
			index[strings.ToLower(p.Name)] = len(out)
			out = append(out, p)
			continue
		}
		slotIdx := make(map[string]int, len(out[i].Choices))
		for j, c := range out[i].Choices {
			slotIdx[c.SlotID] = j
		}
		for _, c := range p.Choices {
			if j, held := slotIdx[c.SlotID]; held {
				out[i].Choices[j].DishName = c.DishName
				continue
			}
			out[i].Choices = append(out[i].Choices, c)
		}
	}
	return out
}

// issueManageURL mints a fresh token and builds the manage link. A failure
// here never fails the registration; the contact can use the remind flow.
func (s *signupService) issueManageURL(ctx context.Context, registrationID string) string {
	raw, err := s.tokens.Issue(ctx, registrationID)
	if err != nil {
		s.logger.Error("issue manage token failed",
			zap.String("registration_id", registrationID), zap.Error(err))
		return ""
	}
	return s.cfg.Server.BaseURL + "/manage/" + raw
}

func (s *signupService) notify(ctx context.Context, reg *model.Registration, event *model.Event, manageURL string) {
	if s.notifier == nil || !reg.EmailOptIn {
		return
	}
	if err := s.notifier.SendManageLink(ctx, reg, event, manageURL); err != nil {
		s.logger.Warn("send manage link failed",
			zap.String("registration_id", reg.RegistrationID), zap.Error(err))
	}
}

func (s *signupService) invalidateOccupancy(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOccupancy(ctx, eventID); err != nil {
		s.logger.Warn("invalidate occupancy cache failed",
			zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *signupService) buildRegistrationResponse(ctx context.Context, reg *model.Registration) (*dto.RegistrationResponse, error) {
	// Re-fetch: the caller may have just reconciled the participant set.
	reg, err := s.repo.Registration.GetByID(ctx, reg.RegistrationID)
	if err != nil {
		return nil, err
	}
	event, err := s.repo.Event.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByRegistration(ctx, reg.RegistrationID)
	if err != nil {
		return nil, err
	}
	byParticipant := make(map[string][]dto.AssignmentDetail)
	for i := range assignments {
		a := &assignments[i]
		detail := dto.AssignmentDetail{SlotID: a.SlotID, DishName: a.DishName}
		if a.Slot != nil {
			detail.StartsAt = fmtTime(a.Slot.StartsAt)
			detail.EndsAt = fmtTime(a.Slot.EndsAt)
			detail.Title = a.Slot.Title
			if a.Slot.Station != nil {
				detail.Station = a.Slot.Station.Name
			}
		}
		byParticipant[a.ParticipantID] = append(byParticipant[a.ParticipantID], detail)
	}

	participants := make([]dto.ParticipantDetail, 0, len(reg.Participants))
	for i := range reg.Participants {
		p := &reg.Participants[i]
		details := byParticipant[p.ParticipantID]
		if details == nil {
			details = []dto.AssignmentDetail{}
		}
		participants = append(participants, dto.ParticipantDetail{
			ID:          p.ParticipantID,
			Name:        p.Name,
			Assignments: details,
		})
	}

	return &dto.RegistrationResponse{
		ID: reg.RegistrationID,
		Event: dto.EventBrief{
			ID:         event.EventID,
			Title:      event.Title,
			SignupMode: event.SignupMode,
			StartsAt:   fmtTime(event.StartsAt),
			EndsAt:     fmtTime(event.EndsAt),
		},
		ContactName:  reg.ContactName,
		ContactEmail: reg.ContactEmail,
		ContactPhone: reg.ContactPhone,
		EmailOptIn:   reg.EmailOptIn,
		Participants: participants,
		CreatedAt:    reg.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    reg.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func fmtTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
