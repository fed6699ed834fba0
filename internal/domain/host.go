package domain

import (
	"context"
	"time"
)

// Host is an actor allowed to offer an iftar meal on a given date. Hosts are
// provisioned on first Google sign-in or allow-listed by an admin.
// swagger:model Host
type Host struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHost returns a new Host with the given fields. Email must already be
// lowercased by the caller. ID is set by the repository on create.
func NewHost(email, name string, image *string, createdAt time.Time) *Host {
	return &Host{
		Email:     email,
		Name:      name,
		Image:     image,
		CreatedAt: createdAt,
	}
}

// HostRepository defines storage operations for hosts.
type HostRepository interface {
	Create(ctx context.Context, h *Host) error
	GetByID(ctx context.Context, id string) (*Host, error)
	GetByEmail(ctx context.Context, email string) (*Host, error)
	List(ctx context.Context) ([]*Host, error)
	Delete(ctx context.Context, id string) error
}
