package model

// Station maps to stations — a named group of slots within an event,
// manually ordered by Position.
type Station struct {
	StationID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"station_id"`
	EventID     string `gorm:"type:uuid;not null"                             json:"event_id"`
	Name        string `gorm:"type:varchar(200);not null"                     json:"name"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	Position    int    `gorm:"not null;default:0"                             json:"position"`
	BaseModel

	Slots []Slot `gorm:"foreignKey:StationID;references:StationID" json:"slots,omitempty"`
}

func (Station) TableName() string { return "stations" }
