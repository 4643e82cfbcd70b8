package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
)

// ParticipantRepository is the participants data access interface.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	ListByRegistration(ctx context.Context, registrationID string) ([]model.Participant, error)
	Update(ctx context.Context, participant *model.Participant) error
	Delete(ctx context.Context, id string) error
	DeleteByRegistration(ctx context.Context, registrationID string) error
}

type participantRepo struct {
	db *gorm.DB
}

func NewParticipantRepo(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) Create(ctx context.Context, participant *model.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *participantRepo) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	var participant model.Participant
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", id).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepo) ListByRegistration(ctx context.Context, registrationID string) ([]model.Participant, error) {
	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *participantRepo) Update(ctx context.Context, participant *model.Participant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

func (r *participantRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("participant_id = ?", id).
		Delete(&model.Participant{}).Error
}

func (r *participantRepo) DeleteByRegistration(ctx context.Context, registrationID string) error {
	return r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Delete(&model.Participant{}).Error
}
