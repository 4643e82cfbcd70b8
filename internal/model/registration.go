package model

import (
	"strings"
	"time"
)

// Registration maps to registrations — the contact-level record grouping one
// or more participants for one event. At most one non-empty registration per
// (event, lower(email)) exists at any time; transient duplicates are folded by
// the merge pass rather than rejected by a uniqueness constraint.
type Registration struct {
	RegistrationID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"registration_id"`
	EventID              string     `gorm:"type:uuid;not null"                             json:"event_id"`
	ContactName          string     `gorm:"type:varchar(200);not null"                     json:"contact_name"`
	ContactEmail         string     `gorm:"type:varchar(320);not null"                     json:"contact_email"`
	ContactPhone         string     `gorm:"type:varchar(40);not null;default:''"           json:"contact_phone,omitempty"`
	ManageTokenHash      string     `gorm:"type:varchar(128);not null;default:''"          json:"-"`
	ManageTokenExpiresAt *time.Time `json:"-"`
	EmailOptIn           bool       `gorm:"not null;default:true"                          json:"email_opt_in"`
	OptedOutAt           *time.Time `json:"opted_out_at,omitempty"`
	BaseModel

	Event        *Event        `gorm:"foreignKey:EventID;references:EventID" json:"event,omitempty"`
	Participants []Participant `gorm:"foreignKey:RegistrationID;references:RegistrationID" json:"participants,omitempty"`
}

func (Registration) TableName() string { return "registrations" }

// NormalizedEmail lower-cases the contact email for identity comparison.
func (r *Registration) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(r.ContactEmail))
}

// TokenExpired reports whether the manage token has passed its expiry.
// A nil expiry means the token never expires.
func (r *Registration) TokenExpired(now time.Time) bool {
	return r.ManageTokenExpiresAt != nil && now.After(*r.ManageTokenExpiresAt)
}

// FindParticipant matches a participant by name, case-insensitively.
func (r *Registration) FindParticipant(name string) *Participant {
	for i := range r.Participants {
		if strings.EqualFold(r.Participants[i].Name, name) {
			return &r.Participants[i]
		}
	}
	return nil
}
