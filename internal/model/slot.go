package model

import "time"

// Slot maps to slots — a capacity-bounded unit a participant can claim.
// In schedule mode StartsAt/EndsAt are set; in potluck mode Title and the
// serving-size range are set instead.
type Slot struct {
	SlotID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	StationID      string     `gorm:"type:uuid;not null"                             json:"station_id"`
	CapacityNeeded int        `gorm:"not null"                                       json:"capacity_needed"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	Title          string     `gorm:"type:varchar(200);not null;default:''"          json:"title,omitempty"`
	ServesMin      int        `gorm:"not null;default:0"                             json:"serves_min,omitempty"`
	ServesMax      int        `gorm:"not null;default:0"                             json:"serves_max,omitempty"`
	BaseModel

	Station *Station `gorm:"foreignKey:StationID;references:StationID" json:"station,omitempty"`
}

func (Slot) TableName() string { return "slots" }

// HasTimeRange reports whether both instants are present.
func (s *Slot) HasTimeRange() bool { return s.StartsAt != nil && s.EndsAt != nil }

// Overlaps reports whether two slots' [start, end) intervals intersect.
// Abutting ranges (one ends exactly when the other starts) do not overlap.
// Slots without a time range never overlap anything.
func (s *Slot) Overlaps(other *Slot) bool {
	if !s.HasTimeRange() || !other.HasTimeRange() {
		return false
	}
	return s.StartsAt.Before(*other.EndsAt) && other.StartsAt.Before(*s.EndsAt)
}
