package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"iftarmatch/internal/domain"
)

type directoryService struct {
	groupRepo      domain.GuestGroupRepository
	hostRepo       domain.HostRepository
	assignmentRepo domain.GroupAssignmentRepository
	resolver       domain.IdentityResolver
	adminEmails    map[string]struct{}
	contextTimeout time.Duration
}

// NewDirectoryService creates the admin-gated directory over hosts, guest
// groups, and assignments. adminEmails mirrors the resolver's allow-list so
// admin accounts cannot be removed through the host directory.
func NewDirectoryService(groupRepo domain.GuestGroupRepository,
	hostRepo domain.HostRepository,
	assignmentRepo domain.GroupAssignmentRepository,
	resolver domain.IdentityResolver,
	adminEmails []string,
	timeout time.Duration,
) domain.DirectoryService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.TrimSpace(strings.ToLower(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &directoryService{
		groupRepo:      groupRepo,
		hostRepo:       hostRepo,
		assignmentRepo: assignmentRepo,
		resolver:       resolver,
		adminEmails:    admins,
		contextTimeout: timeout,
	}
}

// ListGroups is open to any authenticated caller; hosts need the group roster
// to book a slot.
func (s *directoryService) ListGroups(ctx context.Context, actorEmail string) ([]*domain.GuestGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if identity.Role == domain.RoleNone {
		return nil, domain.ErrForbidden
	}
	return s.groupRepo.List(ctx)
}

// CreateGroup creates a guest group and assigns its contact email as the
// group's representative in the same call.
func (s *directoryService) CreateGroup(ctx context.Context, actorEmail string, g *domain.GuestGroup) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return err
	}
	if g == nil || strings.TrimSpace(g.Name) == "" || strings.TrimSpace(g.Email) == "" || g.ParticipantCount <= 0 {
		return domain.ErrInvalidInput
	}
	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.TrimSpace(strings.ToLower(g.Email))
	g.CreatedAt = time.Now()

	if err := s.groupRepo.Create(ctx, g); err != nil {
		return fmt.Errorf("create guest group: %w", err)
	}
	if err := s.assignmentRepo.Upsert(ctx, g.Name, g.Email); err != nil {
		return fmt.Errorf("assign group email: %w", err)
	}
	return nil
}

// UpdateGroup rewrites a group. A rename cascades to the assignment key and
// to invitations referencing the old name inside one transaction.
func (s *directoryService) UpdateGroup(ctx context.Context, actorEmail, groupID string, g *domain.GuestGroup) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return err
	}
	if g == nil || strings.TrimSpace(g.Name) == "" || strings.TrimSpace(g.Email) == "" || g.ParticipantCount <= 0 {
		return domain.ErrInvalidInput
	}

	current, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get guest group: %w", err)
	}

	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.TrimSpace(strings.ToLower(g.Email))
	if err := s.groupRepo.UpdateWithCascade(ctx, groupID, current.Name, g); err != nil {
		return fmt.Errorf("update guest group: %w", err)
	}
	return nil
}

// DeleteGroup removes a group, its assignment, and through the foreign keys
// its invitations and unavailability rows.
func (s *directoryService) DeleteGroup(ctx context.Context, actorEmail, groupID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return err
	}

	g, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get guest group: %w", err)
	}

	if err := s.assignmentRepo.DeleteByGroupName(ctx, g.Name); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete group assignment: %w", err)
	}
	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("delete guest group: %w", err)
	}
	return nil
}

func (s *directoryService) ListHosts(ctx context.Context, actorEmail string) ([]*domain.Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}
	return s.hostRepo.List(ctx)
}

// AddHost registers a host by hand, ahead of their first Google sign-in.
func (s *directoryService) AddHost(ctx context.Context, actorEmail, email, name string) (*domain.Host, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}

	host := domain.NewHost(email, name, nil, time.Now())
	if err := s.hostRepo.Create(ctx, host); err != nil {
		if errors.Is(err, domain.ErrConstraintViolation) {
			return nil, domain.ErrConstraintViolation
		}
		return nil, fmt.Errorf("create host: %w", err)
	}
	return host, nil
}

// RemoveHost deletes a host record. Admin accounts are protected even when a
// host row exists for them.
func (s *directoryService) RemoveHost(ctx context.Context, actorEmail, hostID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return err
	}

	host, err := s.hostRepo.GetByID(ctx, hostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get host: %w", err)
	}
	if _, isAdmin := s.adminEmails[strings.ToLower(host.Email)]; isAdmin {
		return domain.ErrForbidden
	}
	if err := s.hostRepo.Delete(ctx, hostID); err != nil {
		return fmt.Errorf("delete host: %w", err)
	}
	return nil
}

func (s *directoryService) ListAssignments(ctx context.Context, actorEmail string) ([]*domain.GroupAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}
	return s.assignmentRepo.List(ctx)
}

// AssignGroupEmail points a group at a new representative email. The group
// name is the assignment key, so this replaces any previous representative.
func (s *directoryService) AssignGroupEmail(ctx context.Context, actorEmail, groupName, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, actorEmail); err != nil {
		return err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if groupName == "" || email == "" {
		return domain.ErrInvalidInput
	}

	if _, err := s.groupRepo.GetByName(ctx, groupName); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get guest group: %w", err)
	}
	if err := s.assignmentRepo.Upsert(ctx, groupName, email); err != nil {
		return fmt.Errorf("assign group email: %w", err)
	}
	return nil
}

func (s *directoryService) requireAdmin(ctx context.Context, actorEmail string) error {
	identity, err := s.resolver.Resolve(ctx, actorEmail)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if !identity.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
