package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
)

// RegistrationRepository is the registrations data access interface.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	// ListByEventAndEmail matches on lower(contact_email); ordered oldest first
	// so the merge survivor choice is deterministic.
	ListByEventAndEmail(ctx context.Context, eventID, email string) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	Update(ctx context.Context, reg *model.Registration) error
	Delete(ctx context.Context, id string) error

	// ── Manage token lookups ──
	// GetByTokenValue matches the stored credential column verbatim: callers
	// pass the SHA-256 hex digest first and, failing that, the raw token to
	// catch rows persisted as plaintext before hashing was introduced.
	GetByTokenValue(ctx context.Context, value string) (*model.Registration, error)
	UpdateTokenHash(ctx context.Context, id, hash string, expiresAt *time.Time) error

	// ── Housekeeping ──
	// DeleteEmpty removes registrations of the event that have neither
	// participants nor assignments, returning how many were removed.
	DeleteEmpty(ctx context.Context, eventID string) (int64, error)
	// ClearExpiredTokens blanks token hashes whose expiry has passed.
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type registrationRepo struct {
	db *gorm.DB
}

func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registrationRepo) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("registration_id = ?", id).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) ListByEventAndEmail(ctx context.Context, eventID, email string) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("event_id = ? AND LOWER(contact_email) = ?", eventID, strings.ToLower(strings.TrimSpace(email))).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.Assignments").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) Update(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

func (r *registrationRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("registration_id = ?", id).
		Delete(&model.Registration{}).Error
}

func (r *registrationRepo) GetByTokenValue(ctx context.Context, value string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("manage_token_hash = ? AND manage_token_hash != ''", value).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) UpdateTokenHash(ctx context.Context, id, hash string, expiresAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("registration_id = ?", id).
		Updates(map[string]interface{}{
			"manage_token_hash":       hash,
			"manage_token_expires_at": expiresAt,
		}).Error
}

func (r *registrationRepo) DeleteEmpty(ctx context.Context, eventID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("NOT EXISTS (SELECT 1 FROM participants WHERE participants.registration_id = registrations.registration_id)").
		Delete(&model.Registration{})
	return result.RowsAffected, result.Error
}

func (r *registrationRepo) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("manage_token_expires_at IS NOT NULL AND manage_token_expires_at < ?", now).
		Where("manage_token_hash != ''").
		Updates(map[string]interface{}{
			"manage_token_hash":       "",
			"manage_token_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}
