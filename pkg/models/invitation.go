package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is a pending offer for an email address to join a trip
type Invitation struct {
	ID           string           `json:"id" db:"id"`
	TripID       string           `json:"trip_id" db:"trip_id"`
	InviterID    string           `json:"inviter_id" db:"inviter_id"`
	InviteeEmail string           `json:"invitee_email" db:"invitee_email"`
	Status       InvitationStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	// TripName 列表接口回填（"*, trips(name)" 风格的嵌套查询）
	TripName string `json:"trip_name,omitempty"`
}

// Decided reports whether the invitation reached a terminal state
func (i *Invitation) Decided() bool {
	return i.Status == InvitationAccepted || i.Status == InvitationDeclined
}
