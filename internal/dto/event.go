package dto

// ── Event admin DTOs ──

// CreateEventRequest creates a new event in draft state.
type CreateEventRequest struct {
	Title       string  `json:"title"       binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=10000"`
	SignupMode  string  `json:"signup_mode" binding:"required,oneof=schedule potluck"`
	StartsAt    *string `json:"starts_at"   binding:"omitempty"`
	EndsAt      *string `json:"ends_at"     binding:"omitempty"`
}

// UpdateEventRequest patches event fields; nil fields are left untouched.
type UpdateEventRequest struct {
	Title        *string `json:"title"         binding:"omitempty,min=1,max=200"`
	Description  *string `json:"description"   binding:"omitempty,max=10000"`
	PublishState *string `json:"publish_state" binding:"omitempty,oneof=draft private published"`
	StartsAt     *string `json:"starts_at"     binding:"omitempty"`
	EndsAt       *string `json:"ends_at"       binding:"omitempty"`
}

// CreateStationRequest adds a station to an event.
type CreateStationRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=10000"`
}

// UpdateStationRequest patches station fields.
type UpdateStationRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=10000"`
	Position    *int    `json:"position"    binding:"omitempty,min=0"`
}

// CreateSlotRequest adds a slot to a station. For schedule events the time
// range is required; for potluck events the title is.
type CreateSlotRequest struct {
	CapacityNeeded int     `json:"capacity_needed" binding:"required,min=1"`
	StartsAt       *string `json:"starts_at"       binding:"omitempty"`
	EndsAt         *string `json:"ends_at"         binding:"omitempty"`
	Title          string  `json:"title"           binding:"max=200"`
	ServesMin      int     `json:"serves_min"      binding:"omitempty,min=0"`
	ServesMax      int     `json:"serves_max"      binding:"omitempty,min=0"`
}

// UpdateSlotRequest patches slot fields.
type UpdateSlotRequest struct {
	CapacityNeeded *int    `json:"capacity_needed" binding:"omitempty,min=1"`
	StartsAt       *string `json:"starts_at"       binding:"omitempty"`
	EndsAt         *string `json:"ends_at"         binding:"omitempty"`
	Title          *string `json:"title"           binding:"omitempty,max=200"`
	ServesMin      *int    `json:"serves_min"      binding:"omitempty,min=0"`
	ServesMax      *int    `json:"serves_max"      binding:"omitempty,min=0"`
}

// ── Event responses ──

// EventResponse is the full event view with ordered stations and slots.
type EventResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	SignupMode   string            `json:"signup_mode"`
	PublishState string            `json:"publish_state"`
	StartsAt     *string           `json:"starts_at,omitempty"`
	EndsAt       *string           `json:"ends_at,omitempty"`
	Stations     []StationResponse `json:"stations"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

// EventBrief is the public listing entry.
type EventBrief struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SignupMode string  `json:"signup_mode"`
	StartsAt   *string `json:"starts_at,omitempty"`
	EndsAt     *string `json:"ends_at,omitempty"`
}

// StationResponse is a station with its slots.
type StationResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Position    int            `json:"position"`
	Slots       []SlotResponse `json:"slots"`
}

// SlotResponse is a slot with live occupancy.
type SlotResponse struct {
	ID             string  `json:"id"`
	CapacityNeeded int     `json:"capacity_needed"`
	Reserved       int     `json:"reserved"`
	Remaining      int     `json:"remaining"`
	StartsAt       *string `json:"starts_at,omitempty"`
	EndsAt         *string `json:"ends_at,omitempty"`
	Title          string  `json:"title,omitempty"`
	ServesMin      int     `json:"serves_min,omitempty"`
	ServesMax      int     `json:"serves_max,omitempty"`
}
