package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mojotix/internal/domain"
)

// inviteEmailRegex matches a simple email format (local@domain with at least one dot in domain).
var inviteEmailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	gate           *AccessGate
	contextTimeout time.Duration
}

func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	gate *AccessGate,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		gate:           gate,
		contextTimeout: timeout,
	}
}

// BulkInvite invites each address to the event. Per-address outcomes are
// independent: an invalid address or a duplicate fails only itself, with no
// side effect, and the rest of the batch proceeds. Only the event's creator
// or an admin may invite.
func (s *invitationService) BulkInvite(ctx context.Context, requester *domain.Requester, eventID string, emails []string) (invited []string, failed []domain.InviteFailure, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	// A requester who may not even view the event learns nothing from the
	// invite endpoint either.
	if ok, err := s.gate.CanView(ctx, requester, event); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, domain.ErrNotFound
	}
	if requester == nil || (requester.ID != event.CreatedBy && !requester.IsAdmin()) {
		return nil, nil, domain.ErrForbidden
	}

	inviterName := s.inviterName(ctx, requester)
	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		if !inviteEmailRegex.MatchString(email) {
			failed = append(failed, domain.InviteFailure{Email: email, Reason: "invalid email"})
			continue
		}
		if _, err := s.invitationRepo.GetEffective(ctx, eventID, email); err == nil {
			failed = append(failed, domain.InviteFailure{Email: email, Reason: "already invited"})
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			failed = append(failed, domain.InviteFailure{Email: email, Reason: err.Error()})
			continue
		}

		inv := &domain.Invitation{
			EventID:   eventID,
			Email:     email,
			InvitedBy: requester.ID,
			Status:    domain.InvitationPending,
			InvitedAt: time.Now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			failed = append(failed, domain.InviteFailure{Email: email, Reason: "could not create invitation"})
			continue
		}
		if err := s.emailService.SendInvitation(ctx, &domain.InvitationEmailData{
			Email:       email,
			InviterName: inviterName,
			EventTitle:  event.Title,
			EventDate:   event.Date.Format("Mon, 02 Jan 2006"),
			EventVenue:  event.Venue,
		}); err != nil {
			// Roll the row back so retrying the failed address is not
			// rejected as a duplicate.
			_ = s.invitationRepo.Delete(ctx, inv.ID)
			failed = append(failed, domain.InviteFailure{Email: email, Reason: "invitation email failed"})
			continue
		}
		invited = append(invited, email)
	}
	return invited, failed, nil
}

// Respond records the invitee's accept or decline. The responding requester's
// email must match the invitation, and only a pending invitation can be
// responded to.
func (s *invitationService) Respond(ctx context.Context, requester *domain.Requester, invitationID string, accept bool) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if requester == nil || !strings.EqualFold(requester.Email, inv.Email) {
		// Don't reveal other people's invitations.
		return nil, domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return nil, fmt.Errorf("%w: already %s", domain.ErrAlreadyResponded, inv.Status)
	}

	status := domain.InvitationDeclined
	if accept {
		status = domain.InvitationAccepted
	}
	now := time.Now()
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, status, now); err != nil {
		return nil, fmt.Errorf("update invitation: %w", err)
	}
	inv.Status = status
	inv.RespondedAt = &now
	return inv, nil
}

// ListEventInvitations returns the event's invitations. The gating mirrors
// BulkInvite: a requester who may not view the event gets ErrNotFound, a
// viewer who is neither the creator nor an admin gets ErrForbidden.
func (s *invitationService) ListEventInvitations(ctx context.Context, requester *domain.Requester, eventID string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ok, err := s.gate.CanView(ctx, requester, event); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotFound
	}
	if requester == nil || (requester.ID != event.CreatedBy && !requester.IsAdmin()) {
		return nil, domain.ErrForbidden
	}

	invs, err := s.invitationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}

// Revoke deletes the invitation regardless of status. An accepted invitee
// loses access to the private event on the next read.
func (s *invitationService) Revoke(ctx context.Context, requester *domain.Requester, invitationID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if requester == nil || !requester.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := s.invitationRepo.Delete(ctx, invitationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *invitationService) inviterName(ctx context.Context, requester *domain.Requester) string {
	user, err := s.userRepo.GetByID(ctx, requester.ID)
	if err != nil || user == nil || strings.TrimSpace(user.Name) == "" {
		if requester.Email != "" {
			return requester.Email
		}
		return "The event organizer"
	}
	return user.Name
}
