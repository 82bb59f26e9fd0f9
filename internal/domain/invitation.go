package domain

import (
	"context"
	"time"
)

// InvitationStatus is the invitee's response state.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is an offer of access to a private event. At most one effective
// (pending or accepted) invitation may exist per (event, email); bulk invite
// enforces this at write time.
// swagger:model Invitation
type Invitation struct {
	ID          string           `json:"id"`
	EventID     string           `json:"event_id"`
	Email       string           `json:"email"`
	InvitedBy   string           `json:"invited_by"`
	Status      InvitationStatus `json:"status"`
	InvitedAt   time.Time        `json:"invited_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// GetEffective returns the pending or accepted invitation for the
	// (event, email) pair, or ErrNotFound.
	GetEffective(ctx context.Context, eventID, email string) (*Invitation, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
	// ListAcceptedEventIDs returns the IDs of every event the email holds an
	// accepted invitation for. Used by the access gate to filter event lists
	// without a per-event lookup.
	ListAcceptedEventIDs(ctx context.Context, email string) ([]string, error)
	UpdateStatus(ctx context.Context, id string, status InvitationStatus, respondedAt time.Time) error
	// Delete removes the invitation row outright. Used to roll back an
	// invitation whose email could not be sent, and by admin revocation.
	Delete(ctx context.Context, id string) error
}

// InviteFailure reports one address a bulk invite could not process.
type InviteFailure struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// InvitationService defines invitation operations exposed to the delivery layer.
type InvitationService interface {
	// BulkInvite invites each address to the event, skipping invalid addresses
	// and addresses that already hold an effective invitation. Per-address
	// failures do not abort the batch.
	BulkInvite(ctx context.Context, requester *Requester, eventID string, emails []string) (invited []string, failed []InviteFailure, err error)
	// Respond records the invitee's accept/decline. The responding email must
	// match the invitation.
	Respond(ctx context.Context, requester *Requester, invitationID string, accept bool) (*Invitation, error)
	// ListEventInvitations returns the event's invitations, newest first.
	// Creator or admin only.
	ListEventInvitations(ctx context.Context, requester *Requester, eventID string) ([]*Invitation, error)
	// Revoke deletes an invitation outright, regardless of status. Admin only.
	Revoke(ctx context.Context, requester *Requester, invitationID string) error
}
