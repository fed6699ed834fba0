package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"iftarmatch/internal/domain"
)

type identityResolver struct {
	adminEmails    map[string]struct{}
	assignmentRepo domain.GroupAssignmentRepository
	hostRepo       domain.HostRepository
}

// NewIdentityResolver creates the resolver that maps a verified email to
// exactly one role. The admin allow-list is injected configuration, not
// directory data.
func NewIdentityResolver(adminEmails []string, assignmentRepo domain.GroupAssignmentRepository, hostRepo domain.HostRepository) domain.IdentityResolver {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &identityResolver{
		adminEmails:    admins,
		assignmentRepo: assignmentRepo,
		hostRepo:       hostRepo,
	}
}

// Resolve checks, in order: admin allow-list, group assignment, host
// directory. Group assignment outranks host presence so a representative who
// also hosts still approves their group's invitations.
func (s *identityResolver) Resolve(ctx context.Context, email string) (*domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return &domain.Identity{Role: domain.RoleNone}, nil
	}

	if _, ok := s.adminEmails[email]; ok {
		return &domain.Identity{Email: email, Role: domain.RoleAdmin}, nil
	}

	assignment, err := s.assignmentRepo.GetByEmail(ctx, email)
	if err == nil {
		return &domain.Identity{
			Email:     email,
			Role:      domain.RoleGroupRepresentative,
			GroupName: assignment.GuestGroupName,
		}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup group assignment: %w", err)
	}

	host, err := s.hostRepo.GetByEmail(ctx, email)
	if err == nil {
		return &domain.Identity{Email: email, Role: domain.RoleHost, HostID: host.ID}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup host: %w", err)
	}

	return &domain.Identity{Email: email, Role: domain.RoleNone}, nil
}
