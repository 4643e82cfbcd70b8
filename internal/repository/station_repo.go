package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
)

// StationRepository is the stations data access interface.
type StationRepository interface {
	Create(ctx context.Context, station *model.Station) error
	GetByID(ctx context.Context, id string) (*model.Station, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Station, error)
	Update(ctx context.Context, station *model.Station) error
	Delete(ctx context.Context, id string) error
	MaxPosition(ctx context.Context, eventID string) (int, error)
}

type stationRepo struct {
	db *gorm.DB
}

func NewStationRepo(db *gorm.DB) StationRepository {
	return &stationRepo{db: db}
}

func (r *stationRepo) Create(ctx context.Context, station *model.Station) error {
	return r.db.WithContext(ctx).Create(station).Error
}

func (r *stationRepo) GetByID(ctx context.Context, id string) (*model.Station, error) {
	var station model.Station
	err := r.db.WithContext(ctx).
		Where("station_id = ?", id).
		First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Station, error) {
	var stations []model.Station
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("position ASC, created_at ASC").
		Find(&stations).Error
	return stations, err
}

func (r *stationRepo) Update(ctx context.Context, station *model.Station) error {
	return r.db.WithContext(ctx).Save(station).Error
}

func (r *stationRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("station_id = ?", id).
		Delete(&model.Station{}).Error
}

func (r *stationRepo) MaxPosition(ctx context.Context, eventID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&model.Station{}).
		Select("MAX(position)").
		Where("event_id = ?", eventID).
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}
