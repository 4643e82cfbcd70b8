package model

import "time"

// ── Signup modes ──

const (
	SignupModeSchedule = "schedule" // time blocks with start/end instants
	SignupModePotluck  = "potluck"  // items to bring, no time semantics
)

// ── Publish states ──

const (
	PublishStateDraft     = "draft"
	PublishStatePrivate   = "private" // reachable via direct link, hidden from listing
	PublishStatePublished = "published"
)

// Event maps to events.
type Event struct {
	EventID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	Title        string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string     `gorm:"type:text;not null;default:''"                  json:"description"`
	SignupMode   string     `gorm:"type:varchar(10);not null;default:'schedule'"   json:"signup_mode"`
	PublishState string     `gorm:"type:varchar(10);not null;default:'draft'"      json:"publish_state"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	BaseModel

	Stations []Station `gorm:"foreignKey:EventID;references:EventID" json:"stations,omitempty"`
}

func (Event) TableName() string { return "events" }

// IsPotluck reports whether the event uses potluck signup semantics.
func (e *Event) IsPotluck() bool { return e.SignupMode == SignupModePotluck }
