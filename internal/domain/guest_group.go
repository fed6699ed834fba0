package domain

import (
	"context"
	"time"
)

// GuestGroup is a named cohort that can receive invitations. Participant
// count and the delivery flag act as defaults copied onto invitations at
// creation time.
// swagger:model GuestGroup
type GuestGroup struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	ParticipantCount int       `json:"participant_count"`
	IsDelivery       bool      `json:"is_delivery"`
	Color            *string   `json:"color,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewGuestGroup returns a new GuestGroup. ID is set by the repository on create.
func NewGuestGroup(name, email string, participantCount int, isDelivery bool, color *string, createdAt time.Time) *GuestGroup {
	return &GuestGroup{
		Name:             name,
		Email:            email,
		ParticipantCount: participantCount,
		IsDelivery:       isDelivery,
		Color:            color,
		CreatedAt:        createdAt,
	}
}

// GroupAssignment maps a guest group name to the single email address
// authorized to accept or reject that group's invitations. The group name is
// the primary key, so at most one assignment exists per group.
// swagger:model GroupAssignment
type GroupAssignment struct {
	GuestGroupName string    `json:"guest_group_name"`
	Email          string    `json:"email"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GuestGroupRepository defines storage operations for guest groups.
// UpdateWithCascade must run as a single transaction: it rewrites the group
// row and, when the name changed, the assignment key and every invitation
// referencing the old name.
type GuestGroupRepository interface {
	Create(ctx context.Context, g *GuestGroup) error
	GetByID(ctx context.Context, id string) (*GuestGroup, error)
	GetByName(ctx context.Context, name string) (*GuestGroup, error)
	List(ctx context.Context) ([]*GuestGroup, error)
	Count(ctx context.Context) (int, error)
	UpdateWithCascade(ctx context.Context, id, oldName string, g *GuestGroup) error
	Delete(ctx context.Context, id string) error
}

// GroupAssignmentRepository defines storage operations for group assignments.
type GroupAssignmentRepository interface {
	Upsert(ctx context.Context, groupName, email string) error
	GetByEmail(ctx context.Context, email string) (*GroupAssignment, error)
	GetByGroupName(ctx context.Context, groupName string) (*GroupAssignment, error)
	List(ctx context.Context) ([]*GroupAssignment, error)
	DeleteByGroupName(ctx context.Context, groupName string) error
}

// DirectoryService is the admin-gated CRUD surface over hosts, guest groups,
// and group assignments.
type DirectoryService interface {
	ListGroups(ctx context.Context, actorEmail string) ([]*GuestGroup, error)
	CreateGroup(ctx context.Context, actorEmail string, g *GuestGroup) error
	UpdateGroup(ctx context.Context, actorEmail, groupID string, g *GuestGroup) error
	DeleteGroup(ctx context.Context, actorEmail, groupID string) error

	ListHosts(ctx context.Context, actorEmail string) ([]*Host, error)
	AddHost(ctx context.Context, actorEmail, email, name string) (*Host, error)
	RemoveHost(ctx context.Context, actorEmail, hostID string) error

	ListAssignments(ctx context.Context, actorEmail string) ([]*GroupAssignment, error)
	AssignGroupEmail(ctx context.Context, actorEmail, groupName, email string) error
}
