package model

// Assignment maps to assignments — the binding of a participant to a slot.
// DishName is set only for potluck slots. Unique per (participant, slot).
type Assignment struct {
	AssignmentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ParticipantID string `gorm:"type:uuid;not null;uniqueIndex:uniq_participant_slot" json:"participant_id"`
	SlotID        string `gorm:"type:uuid;not null;uniqueIndex:uniq_participant_slot" json:"slot_id"`
	DishName      string `gorm:"type:varchar(200);not null;default:''"          json:"dish_name,omitempty"`
	BaseModel

	Participant *Participant `gorm:"foreignKey:ParticipantID;references:ParticipantID" json:"participant,omitempty"`
	Slot        *Slot        `gorm:"foreignKey:SlotID;references:SlotID" json:"slot,omitempty"`
}

func (Assignment) TableName() string { return "assignments" }

// Key identifies an assignment by its (participant, slot) pair.
func (a *Assignment) Key() AssignmentKey {
	return AssignmentKey{ParticipantID: a.ParticipantID, SlotID: a.SlotID}
}

// AssignmentKey is the logical identity of an assignment.
type AssignmentKey struct {
	ParticipantID string
	SlotID        string
}
