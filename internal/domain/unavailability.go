package domain

import (
	"context"
	"time"
)

// GroupUnavailability is a group-declared block on a date, independent of any
// invitation.
// swagger:model GroupUnavailability
type GroupUnavailability struct {
	ID             string    `json:"id"`
	GuestGroupName string    `json:"guest_group_name"`
	Date           string    `json:"date"`
	Reason         *string   `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// GroupUnavailabilityRepository defines storage operations for unavailability
// declarations.
type GroupUnavailabilityRepository interface {
	Create(ctx context.Context, u *GroupUnavailability) error
	GetByDateAndGroup(ctx context.Context, date, groupName string) (*GroupUnavailability, error)
	ListByGroupName(ctx context.Context, groupName string) ([]*GroupUnavailability, error)
	ListGroupNamesByDate(ctx context.Context, date string) ([]string, error)
	Delete(ctx context.Context, id string) error
}
