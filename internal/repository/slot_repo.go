package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
)

// SlotInfo couples a slot with its owning event's identity and signup mode.
// Returned by InfoForUpdate with the slot rows locked for the enclosing
// transaction, so capacity checks and writes against them are serialized.
type SlotInfo struct {
	SlotID         string
	StationID      string
	CapacityNeeded int
	StartsAt       *time.Time
	EndsAt         *time.Time
	Title          string
	ServesMin      int
	ServesMax      int
	EventID        string
	SignupMode     string
}

// HasTimeRange reports whether both instants are present.
func (i *SlotInfo) HasTimeRange() bool { return i.StartsAt != nil && i.EndsAt != nil }

// SlotRepository is the slots data access interface.
type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id string) error
	// InfoForUpdate locks the slot rows (FOR UPDATE, deterministic order) and
	// returns each with its owning event id and signup mode. Must run inside
	// a transaction.
	InfoForUpdate(ctx context.Context, slotIDs []string) ([]SlotInfo, error)
}

type slotRepo struct {
	db *gorm.DB
}

func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Create(ctx context.Context, slot *model.Slot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	var slot model.Slot
	err := r.db.WithContext(ctx).
		Preload("Station").
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).
		Joins("JOIN stations ON stations.station_id = slots.station_id").
		Where("stations.event_id = ?", eventID).
		Order("slots.starts_at ASC NULLS LAST, slots.title ASC").
		Find(&slots).Error
	return slots, err
}

func (r *slotRepo) Update(ctx context.Context, slot *model.Slot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *slotRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		Delete(&model.Slot{}).Error
}

func (r *slotRepo) InfoForUpdate(ctx context.Context, slotIDs []string) ([]SlotInfo, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	var infos []SlotInfo
	err := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Select("slots.slot_id, slots.station_id, slots.capacity_needed, slots.starts_at, slots.ends_at, slots.title, slots.serves_min, slots.serves_max, stations.event_id, events.signup_mode").
		Joins("JOIN stations ON stations.station_id = slots.station_id").
		Joins("JOIN events ON events.event_id = stations.event_id").
		Where("slots.slot_id IN ?", slotIDs).
		Order("slots.slot_id ASC").
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "slots"}}).
		Scan(&infos).Error
	return infos, err
}
