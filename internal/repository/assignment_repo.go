package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
)

// AssignmentRepository is the assignments data access interface.
type AssignmentRepository interface {
	BatchCreate(ctx context.Context, assignments []model.Assignment) error
	ListByRegistration(ctx context.Context, registrationID string) ([]model.Assignment, error)
	ListBySlots(ctx context.Context, slotIDs []string) ([]model.Assignment, error)
	// CountBySlots returns reserved occupancy (distinct assignment rows) per slot.
	CountBySlots(ctx context.Context, slotIDs []string) (map[string]int, error)
	// CountByEvent returns reserved occupancy for every slot of the event.
	CountByEvent(ctx context.Context, eventID string) (map[string]int, error)
	DeleteByKeys(ctx context.Context, keys []model.AssignmentKey) error
	DeleteByParticipant(ctx context.Context, participantID string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) BatchCreate(ctx context.Context, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

func (r *assignmentRepo) ListByRegistration(ctx context.Context, registrationID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Preload("Slot.Station").
		Joins("JOIN participants ON participants.participant_id = assignments.participant_id").
		Where("participants.registration_id = ?", registrationID).
		Order("assignments.created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListBySlots(ctx context.Context, slotIDs []string) ([]model.Assignment, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("slot_id IN ?", slotIDs).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) CountBySlots(ctx context.Context, slotIDs []string) (map[string]int, error) {
	if len(slotIDs) == 0 {
		return map[string]int{}, nil
	}
	var rows []struct {
		SlotID string
		N      int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Select("slot_id, COUNT(*) AS n").
		Where("slot_id IN ?", slotIDs).
		Group("slot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SlotID] = row.N
	}
	return counts, nil
}

func (r *assignmentRepo) CountByEvent(ctx context.Context, eventID string) (map[string]int, error) {
	var rows []struct {
		SlotID string
		N      int
	}
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Select("assignments.slot_id, COUNT(*) AS n").
		Joins("JOIN slots ON slots.slot_id = assignments.slot_id").
		Joins("JOIN stations ON stations.station_id = slots.station_id").
		Where("stations.event_id = ?", eventID).
		Group("assignments.slot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SlotID] = row.N
	}
	return counts, nil
}

func (r *assignmentRepo) DeleteByKeys(ctx context.Context, keys []model.AssignmentKey) error {
	if len(keys) == 0 {
		return nil
	}
	pairs := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, []interface{}{k.ParticipantID, k.SlotID})
	}
	return r.db.WithContext(ctx).
		Where("(participant_id, slot_id) IN ?", pairs).
		Delete(&model.Assignment{}).Error
}

func (r *assignmentRepo) DeleteByParticipant(ctx context.Context, participantID string) error {
	return r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Delete(&model.Assignment{}).Error
}
