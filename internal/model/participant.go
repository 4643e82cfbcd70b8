package model

// Participant maps to participants — an individual person covered by a
// registration. Name is unique (case-insensitive) within its registration,
// enforced by the services, and the row is deleted with its registration.
type Participant struct {
	ParticipantID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	RegistrationID string `gorm:"type:uuid;not null"                             json:"registration_id"`
	Name           string `gorm:"type:varchar(200);not null"                     json:"name"`
	BaseModel

	Assignments []Assignment `gorm:"foreignKey:ParticipantID;references:ParticipantID" json:"assignments,omitempty"`
}

func (Participant) TableName() string { return "participants" }
