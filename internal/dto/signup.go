package dto

// ── Signup DTOs ──

// SlotChoice selects one slot for one participant. DishName is required for
// potluck slots and must be empty otherwise.
type SlotChoice struct {
	SlotID   string `json:"slot_id"   binding:"required,uuid"`
	DishName string `json:"dish_name" binding:"max=200"`
}

// ParticipantSignup names one person and the slots they want.
type ParticipantSignup struct {
	Name    string       `json:"name"    binding:"required,min=1,max=200"`
	Choices []SlotChoice `json:"choices" binding:"omitempty,dive"`
}

// SignupRequest is the public registration submission for an event.
type SignupRequest struct {
	ContactName  string              `json:"contact_name"  binding:"required,min=1,max=200"`
	ContactEmail string              `json:"contact_email" binding:"required,email"`
	ContactPhone string              `json:"contact_phone" binding:"max=40"`
	EmailOptIn   *bool               `json:"email_opt_in"`
	Participants []ParticipantSignup `json:"participants"  binding:"required,min=1,dive"`
}

// SignupResponse reports the outcome of a submission. AlreadyExisted is true
// when the contact already had a registration and this submission was folded
// into it.
type SignupResponse struct {
	RegistrationID string `json:"registration_id"`
	ManageURL      string `json:"manage_url,omitempty"`
	AlreadyExisted bool   `json:"already_existed"`
}

// RemindRequest asks for the manage link to be re-sent.
type RemindRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ── Manage DTOs ──

// UpdateRegistrationRequest replaces the registration's desired state via the
// manage link. The participant list is authoritative: participants omitted
// here are removed along with their assignments.
type UpdateRegistrationRequest struct {
	ContactName  *string             `json:"contact_name"  binding:"omitempty,min=1,max=200"`
	ContactPhone *string             `json:"contact_phone" binding:"omitempty,max=40"`
	EmailOptIn   *bool               `json:"email_opt_in"`
	Participants []ParticipantSignup `json:"participants"  binding:"dive"` // empty list cancels the registration
}

// RegistrationResponse is the self-service view of a registration.
type RegistrationResponse struct {
	ID           string              `json:"id"`
	Event        EventBrief          `json:"event"`
	ContactName  string              `json:"contact_name"`
	ContactEmail string              `json:"contact_email"`
	ContactPhone string              `json:"contact_phone,omitempty"`
	EmailOptIn   bool                `json:"email_opt_in"`
	Participants []ParticipantDetail `json:"participants"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// ParticipantDetail is a participant with their current assignments.
type ParticipantDetail struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Assignments []AssignmentDetail `json:"assignments"`
}

// AssignmentDetail is one claimed slot.
type AssignmentDetail struct {
	SlotID   string  `json:"slot_id"`
	Station  string  `json:"station,omitempty"`
	StartsAt *string `json:"starts_at,omitempty"`
	EndsAt   *string `json:"ends_at,omitempty"`
	Title    string  `json:"title,omitempty"`
	DishName string  `json:"dish_name,omitempty"`
}

// RegistrationBrief is the admin roster entry for one registration.
type RegistrationBrief struct {
	ID           string              `json:"id"`
	ContactName  string              `json:"contact_name"`
	ContactEmail string              `json:"contact_email"`
	ContactPhone string              `json:"contact_phone,omitempty"`
	EmailOptIn   bool                `json:"email_opt_in"`
	Participants []ParticipantDetail `json:"participants"`
	CreatedAt    string              `json:"created_at"`
}

// ── Admin registration DTOs ──

// AdminAddRegistrationRequest registers a contact on their behalf. Conflict
// and capacity rules apply exactly as for the public form.
type AdminAddRegistrationRequest struct {
	SignupRequest
	SkipNotify bool `json:"skip_notify"`
}

// MergeDuplicatesRequest folds duplicate registrations for one contact email.
// PreferredID optionally names the survivor; otherwise the oldest wins.
type MergeDuplicatesRequest struct {
	Email       string `json:"email"        binding:"required,email"`
	PreferredID string `json:"preferred_id" binding:"omitempty,uuid"`
}

// MergeDuplicatesResponse reports the merge outcome.
type MergeDuplicatesResponse struct {
	SurvivorID string `json:"survivor_id"`
	Merged     int    `json:"merged"`
}
