package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mojotix/internal/domain"
)

// AccessGate decides event visibility. Public events are visible to everyone;
// private events only to their creator, accepted invitees, and admins.
type AccessGate struct {
	invitationRepo domain.InvitationRepository
}

func NewAccessGate(invitationRepo domain.InvitationRepository) *AccessGate {
	return &AccessGate{invitationRepo: invitationRepo}
}

// CanView evaluates the visibility rule, in precedence order:
// public event; unauthenticated; creator; accepted invitee; admin.
func (g *AccessGate) CanView(ctx context.Context, requester *domain.Requester, event *domain.Event) (bool, error) {
	if !event.IsPrivate {
		return true, nil
	}
	if requester == nil {
		return false, nil
	}
	if requester.ID == event.CreatedBy {
		return true, nil
	}
	inv, err := g.invitationRepo.GetEffective(ctx, event.ID, strings.ToLower(requester.Email))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("get invitation: %w", err)
	}
	if inv != nil && inv.Status == domain.InvitationAccepted {
		return true, nil
	}
	if requester.IsAdmin() {
		return true, nil
	}
	return false, nil
}

// FilterVisible returns the subset of events the requester may view. The
// requester's accepted-invitation event IDs are fetched once, so the cost is
// O(events + invitations), not O(events x invitations).
func (g *AccessGate) FilterVisible(ctx context.Context, requester *domain.Requester, events []*domain.Event) ([]*domain.Event, error) {
	var accepted map[string]struct{}
	if requester != nil {
		ids, err := g.invitationRepo.ListAcceptedEventIDs(ctx, strings.ToLower(requester.Email))
		if err != nil {
			return nil, fmt.Errorf("list accepted invitations: %w", err)
		}
		accepted = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			accepted[id] = struct{}{}
		}
	}

	visible := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if !e.IsPrivate {
			visible = append(visible, e)
			continue
		}
		if requester == nil {
			continue
		}
		if requester.ID == e.CreatedBy {
			visible = append(visible, e)
			continue
		}
		if _, ok := accepted[e.ID]; ok {
			visible = append(visible, e)
			continue
		}
		if requester.IsAdmin() {
			visible = append(visible, e)
		}
	}
	return visible, nil
}
