package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"iftarmatch/internal/domain"
)

// Fixed lifecycle messages. Accept and no-show stamps are not customizable;
// reject falls back to the default when the representative gives no reason.
const (
	acceptanceMessage = "Thank you for your kind invitation. We gladly accept and look forward " +
		"to sharing iftar together."
	defaultRejectionMessage = "Thank you for your kind invitation. Unfortunately we have another " +
		"engagement that day and cannot attend. We hope to join you another time."
	noShowMessage        = "The guests did not attend the iftar."
	unavailabilityReason = "Marked as busy by the group"
)

type invitationService struct {
	invitationRepo     domain.InvitationRepository
	hostRepo           domain.HostRepository
	groupRepo          domain.GuestGroupRepository
	unavailabilityRepo domain.GroupUnavailabilityRepository
	resolver           domain.IdentityResolver
	slots              domain.SlotRegistry
	emailService       domain.EmailService
	adminEmails        []string
	logger             *slog.Logger
	contextTimeout     time.Duration
}

// NewInvitationService creates the invitation lifecycle manager. adminEmails
// is the allow-list used for the no-show alert fan-out; authorization itself
// goes through the resolver.
func NewInvitationService(invitationRepo domain.InvitationRepository,
	hostRepo domain.HostRepository,
	groupRepo domain.GuestGroupRepository,
	unavailabilityRepo domain.GroupUnavailabilityRepository,
	resolver domain.IdentityResolver,
	slots domain.SlotRegistry,
	emailService domain.EmailService,
	adminEmails []string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		invitationRepo:     invitationRepo,
		hostRepo:           hostRepo,
		groupRepo:          groupRepo,
		unavailabilityRepo: unavailabilityRepo,
		resolver:           resolver,
		slots:              slots,
		emailService:       emailService,
		adminEmails:        adminEmails,
		logger:             logger,
		contextTimeout:     timeout,
	}
}

// Create books a pending invitation for (date, groupName) on behalf of the
// host. The pre-checks give friendly errors for the common cases; the
// repository's unique indexes remain the authoritative conflict signal, so a
// racing create loses with the same booking error instead of a duplicate row.
func (s *invitationService) Create(ctx context.Context, hostEmail, date, groupName string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	hostEmail = strings.TrimSpace(strings.ToLower(hostEmail))
	if hostEmail == "" || date == "" || groupName == "" {
		return nil, domain.ErrInvalidInput
	}

	host, err := s.hostRepo.GetByEmail(ctx, hostEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get host: %w", err)
	}

	group, err := s.groupRepo.GetByName(ctx, groupName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest group: %w", err)
	}

	if _, err := s.invitationRepo.GetActiveByDateAndHost(ctx, date, host.ID); err == nil {
		return nil, domain.ErrDuplicateHostBooking
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check host booking: %w", err)
	}

	taken, err := s.slots.IsSlotTaken(ctx, date, group.Name)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return nil, domain.ErrSlotUnavailable
	}

	// Participant count and delivery flag are copied from the group now;
	// later group edits do not touch existing invitations.
	inv := domain.NewInvitation(date, host.ID, group.Name, group.ParticipantCount, group.IsDelivery, time.Now())
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrDuplicateHostBooking) {
			return nil, err
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.notify(ctx, "new_invitation", func() error {
		return s.emailService.SendNewInvitation(ctx, &domain.NewInvitationEmailData{
			Email:     group.Email,
			HostName:  host.Name,
			GroupName: group.Name,
			Date:      date,
		})
	})

	return inv, nil
}

// Accept moves a pending invitation to accepted. Only an admin or the
// invitation's group representative may do this.
func (s *invitationService) Accept(ctx context.Context, invitationID, actorEmail string) (*domain.Invitation, error) {
	return s.decide(ctx, invitationID, actorEmail, domain.StatusAccepted, acceptanceMessage)
}

// Reject moves a pending invitation to rejected, storing the given reason or
// the default message. Rejected slots become reclaimable.
func (s *invitationService) Reject(ctx context.Context, invitationID, actorEmail, reason string) (*domain.Invitation, error) {
	message := strings.TrimSpace(reason)
	if message == "" {
		message = defaultRejectionMessage
	}
	return s.decide(ctx, invitationID, actorEmail, domain.StatusRejected, message)
}

func (s *invitationService) decide(ctx context.Context, invitationID, actorEmail string, next domain.InvitationStatus, message string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if !identity.IsAdmin() && !identity.RepresentsGroup(inv.GuestGroupName) {
		return nil, domain.ErrForbidden
	}

	if !inv.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, next, message, now); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	inv.Status = next
	inv.Message = &message
	inv.UpdatedAt = now

	host, err := s.hostRepo.GetByID(ctx, inv.HostID)
	if err != nil {
		s.logger.Warn("skipping decision notification, host lookup failed", "invitation_id", inv.ID, "err", err)
		return inv, nil
	}
	if next == domain.StatusAccepted {
		s.notify(ctx, "invitation_accepted", func() error {
			return s.emailService.SendInvitationAccepted(ctx, &domain.InvitationAcceptedEmailData{
				Email:     host.Email,
				HostName:  host.Name,
				GroupName: inv.GuestGroupName,
				Date:      inv.Date,
			})
		})
	} else {
		s.notify(ctx, "invitation_rejected", func() error {
			return s.emailService.SendInvitationRejected(ctx, &domain.InvitationRejectedEmailData{
				Email:     host.Email,
				HostName:  host.Name,
				GroupName: inv.GuestGroupName,
				Date:      inv.Date,
				Reason:    message,
			})
		})
	}

	return inv, nil
}

// Edit changes participant count and delivery flag. Only the owning host or
// an admin may edit; status is never touched here.
func (s *invitationService) Edit(ctx context.Context, invitationID, actorEmail string, participantCount int, isDelivery bool) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if participantCount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	if err := s.authorizeHostOrAdmin(ctx, actorEmail, inv.HostID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.invitationRepo.UpdateDetails(ctx, inv.ID, participantCount, isDelivery, now); err != nil {
		return nil, fmt.Errorf("update details: %w", err)
	}
	inv.ParticipantCount = participantCount
	inv.IsDelivery = isDelivery
	inv.UpdatedAt = now
	return inv, nil
}

// MarkNoShow records that the guests did not attend an accepted invitation
// and alerts every admin.
func (s *invitationService) MarkNoShow(ctx context.Context, invitationID, actorEmail string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	if err := s.authorizeHostOrAdmin(ctx, actorEmail, inv.HostID); err != nil {
		return nil, err
	}

	if !inv.Status.CanTransitionTo(domain.StatusNoShow) {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.StatusNoShow, noShowMessage, now); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	inv.Status = domain.StatusNoShow
	message := noShowMessage
	inv.Message = &message
	inv.UpdatedAt = now

	hostName := "Unknown host"
	if host, err := s.hostRepo.GetByID(ctx, inv.HostID); err == nil {
		hostName = host.Name
	}
	for _, adminEmail := range s.adminEmails {
		email := adminEmail
		s.notify(ctx, "no_show_alert", func() error {
			return s.emailService.SendNoShowAlert(ctx, &domain.NoShowAlertEmailData{
				Email:     email,
				HostName:  hostName,
				GroupName: inv.GuestGroupName,
				Date:      inv.Date,
			})
		})
	}

	return inv, nil
}

// Delete removes a rejected invitation. Admin-only; non-rejected rows must go
// through the lifecycle instead.
func (s *invitationService) Delete(ctx context.Context, invitationID, actorEmail string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if !identity.IsAdmin() {
		return domain.ErrForbidden
	}

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	if inv.Status != domain.StatusRejected {
		return domain.ErrInvalidState
	}
	if err := s.invitationRepo.Delete(ctx, inv.ID); err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

// ToggleUnavailability flips the group's blocked flag on a date. Creating a
// block is refused while the group holds a non-rejected invitation that day;
// removing one is always allowed. Returns whether the date is blocked after
// the call.
func (s *invitationService) ToggleUnavailability(ctx context.Context, actorEmail, date, groupName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if date == "" || groupName == "" {
		return false, domain.ErrInvalidInput
	}

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return false, fmt.Errorf("resolve identity: %w", err)
	}
	if !identity.IsAdmin() && !identity.RepresentsGroup(groupName) {
		return false, domain.ErrForbidden
	}

	existing, err := s.unavailabilityRepo.GetByDateAndGroup(ctx, date, groupName)
	if err == nil {
		if err := s.unavailabilityRepo.Delete(ctx, existing.ID); err != nil {
			return false, fmt.Errorf("remove unavailability: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("get unavailability: %w", err)
	}

	if _, err := s.invitationRepo.GetActiveByDateAndGroup(ctx, date, groupName); err == nil {
		return false, domain.ErrSlotUnavailable
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("check booking: %w", err)
	}

	reason := unavailabilityReason
	u := &domain.GroupUnavailability{
		GuestGroupName: groupName,
		Date:           date,
		Reason:         &reason,
		CreatedAt:      time.Now(),
	}
	if err := s.unavailabilityRepo.Create(ctx, u); err != nil {
		return false, fmt.Errorf("create unavailability: %w", err)
	}
	return true, nil
}

// Get returns one invitation to an actor allowed to see it: an admin, the
// owning host, or the group's representative.
func (s *invitationService) Get(ctx context.Context, invitationID, actorEmail string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if identity.IsAdmin() || identity.RepresentsGroup(inv.GuestGroupName) {
		return inv, nil
	}
	if err := s.authorizeHostOrAdmin(ctx, actorEmail, inv.HostID); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListForActor returns the invitations visible to the actor: all of them for
// an admin, the group's for a representative, the host's own otherwise.
func (s *invitationService) ListForActor(ctx context.Context, actorEmail string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	switch identity.Role {
	case domain.RoleAdmin:
		return s.invitationRepo.List(ctx)
	case domain.RoleGroupRepresentative:
		return s.invitationRepo.ListByGroupName(ctx, identity.GroupName)
	case domain.RoleHost:
		return s.invitationRepo.ListByHostID(ctx, identity.HostID)
	default:
		return nil, domain.ErrForbidden
	}
}

// ListGroupUnavailability returns a group's blocked dates to its
// representative or an admin.
func (s *invitationService) ListGroupUnavailability(ctx context.Context, actorEmail, groupName string) ([]*domain.GroupUnavailability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if !identity.IsAdmin() && !identity.RepresentsGroup(groupName) {
		return nil, domain.ErrForbidden
	}
	return s.unavailabilityRepo.ListByGroupName(ctx, groupName)
}

// authorizeHostOrAdmin allows an admin or the host owning the invitation.
// Host ownership is checked directly against the host directory so a
// representative who also hosts keeps control of their own invitations.
func (s *invitationService) authorizeHostOrAdmin(ctx context.Context, actorEmail, hostID string) error {
	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if identity.IsAdmin() {
		return nil
	}
	host, err := s.hostRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(actorEmail)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("get host: %w", err)
	}
	if host.ID != hostID {
		return domain.ErrForbidden
	}
	return nil
}

// notify runs a best-effort notification. Delivery failures are logged and
// never surfaced to the caller, so a committed transition stays committed.
func (s *invitationService) notify(ctx context.Context, kind string, send func() error) {
	if s.emailService == nil {
		return
	}
	if err := send(); err != nil {
		s.logger.Warn("notification failed", "kind", kind, "err", err)
	}
}
