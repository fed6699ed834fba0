package domain

import (
	"context"
	"time"
)

// InvitationStatus enumerates the invitation lifecycle states.
type InvitationStatus string

// Lifecycle states. pending may move to accepted or rejected; accepted may
// move to no_show; nothing ever returns to pending.
const (
	StatusPending  InvitationStatus = "pending"
	StatusAccepted InvitationStatus = "accepted"
	StatusRejected InvitationStatus = "rejected"
	StatusNoShow   InvitationStatus = "no_show"
)

// CanTransitionTo reports whether the status may move to next.
func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusRejected
	case StatusAccepted:
		return next == StatusNoShow
	default:
		return false
	}
}

// Invitation pairs one date, one guest group, and one host, and carries the
// lifecycle status. Dates are calendar days in YYYY-MM-DD form. Participant
// count and delivery flag are copied from the guest group at creation time
// and are not re-derived afterwards.
// swagger:model Invitation
type Invitation struct {
	ID               string           `json:"id"`
	Date             string           `json:"date"`
	HostID           string           `json:"host_id"`
	GuestGroupName   string           `json:"guest_group_name"`
	ParticipantCount int              `json:"participant_count"`
	IsDelivery       bool             `json:"is_delivery"`
	Status           InvitationStatus `json:"status"`
	Message          *string          `json:"message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewInvitation returns a pending Invitation. ID is set by the repository on
// create.
func NewInvitation(date, hostID, guestGroupName string, participantCount int, isDelivery bool, createdAt time.Time) *Invitation {
	return &Invitation{
		Date:             date,
		HostID:           hostID,
		GuestGroupName:   guestGroupName,
		ParticipantCount: participantCount,
		IsDelivery:       isDelivery,
		Status:           StatusPending,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

// InvitationRepository defines storage operations for invitations. Create
// must rely on the store's partial unique indexes as the authoritative
// conflict signal and return ErrSlotUnavailable or ErrDuplicateHostBooking
// on the corresponding uniqueness violation.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetActiveByDateAndGroup(ctx context.Context, date, groupName string) (*Invitation, error)
	GetActiveByDateAndHost(ctx context.Context, date, hostID string) (*Invitation, error)
	ListActiveGroupNamesByDate(ctx context.Context, date string) ([]string, error)
	List(ctx context.Context) ([]*Invitation, error)
	ListByHostID(ctx context.Context, hostID string) ([]*Invitation, error)
	ListByGroupName(ctx context.Context, groupName string) ([]*Invitation, error)
	UpdateStatus(ctx context.Context, id string, status InvitationStatus, message string, updatedAt time.Time) error
	UpdateDetails(ctx context.Context, id string, participantCount int, isDelivery bool, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// SlotRegistry answers availability questions for (date, guest group) slots.
// A slot counts as taken when a non-rejected invitation exists for it or the
// group declared the date unavailable.
type SlotRegistry interface {
	IsSlotTaken(ctx context.Context, date, groupName string) (bool, error)
	ListBookedGroups(ctx context.Context, date string) ([]string, error)
	IsDateFullyBooked(ctx context.Context, date string) (bool, error)
}

// InvitationService is the invitation lifecycle manager. Every operation
// resolves the actor's current role before mutating and re-checks status
// preconditions; notification dispatch is best-effort and never rolls back
// a committed transition.
type InvitationService interface {
	Create(ctx context.Context, hostEmail, date, groupName string) (*Invitation, error)
	Accept(ctx context.Context, invitationID, actorEmail string) (*Invitation, error)
	Reject(ctx context.Context, invitationID, actorEmail, reason string) (*Invitation, error)
	Edit(ctx context.Context, invitationID, actorEmail string, participantCount int, isDelivery bool) (*Invitation, error)
	MarkNoShow(ctx context.Context, invitationID, actorEmail string) (*Invitation, error)
	Delete(ctx context.Context, invitationID, actorEmail string) error
	ToggleUnavailability(ctx context.Context, actorEmail, date, groupName string) (unavailable bool, err error)

	Get(ctx context.Context, invitationID, actorEmail string) (*Invitation, error)
	ListForActor(ctx context.Context, actorEmail string) ([]*Invitation, error)
	ListGroupUnavailability(ctx context.Context, actorEmail, groupName string) ([]*GroupUnavailability, error)
}
