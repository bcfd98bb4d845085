package models

import "time"

type ParticipantRole string

const (
	RoleOwner       ParticipantRole = "owner"
	RoleParticipant ParticipantRole = "participant"
)

// Participant relates a user (or a pending email placeholder) to a trip.
// Exactly one participant per trip has role owner.
type Participant struct {
	ID     string `json:"id" db:"id"`
	TripID string `json:"trip_id" db:"trip_id"`
	// UserID 在 email 占位被 reconcile 之前为 nil
	UserID   *string         `json:"user_id,omitempty" db:"user_id"`
	Email    *string         `json:"email,omitempty" db:"email"`
	Role     ParticipantRole `json:"role" db:"role"`
	JoinedAt time.Time       `json:"joined_at" db:"joined_at"`

	// Display name resolved from profiles, not stored on this row
	Profile *Profile `json:"profile,omitempty"`
}
