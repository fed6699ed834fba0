package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"iftarmatch/internal/domain"
)

type slotRegistry struct {
	invitationRepo     domain.InvitationRepository
	unavailabilityRepo domain.GroupUnavailabilityRepository
	groupRepo          domain.GuestGroupRepository
	contextTimeout     time.Duration
}

// NewSlotRegistry creates the registry that answers (date, group) slot
// availability from non-rejected invitations and group-declared
// unavailability.
func NewSlotRegistry(invitationRepo domain.InvitationRepository,
	unavailabilityRepo domain.GroupUnavailabilityRepository,
	groupRepo domain.GuestGroupRepository,
	timeout time.Duration,
) domain.SlotRegistry {
	return &slotRegistry{
		invitationRepo:     invitationRepo,
		unavailabilityRepo: unavailabilityRepo,
		groupRepo:          groupRepo,
		contextTimeout:     timeout,
	}
}

func (s *slotRegistry) IsSlotTaken(ctx context.Context, date, groupName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := s.invitationRepo.GetActiveByDateAndGroup(ctx, date, groupName)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("get active invitation: %w", err)
	}

	_, err = s.unavailabilityRepo.GetByDateAndGroup(ctx, date, groupName)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("get unavailability: %w", err)
	}
	return false, nil
}

// ListBookedGroups unions group names holding a non-rejected invitation on
// the date with group names that declared the date unavailable.
func (s *slotRegistry) ListBookedGroups(ctx context.Context, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invited, err := s.invitationRepo.ListActiveGroupNamesByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list invited groups: %w", err)
	}
	blocked, err := s.unavailabilityRepo.ListGroupNamesByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list unavailable groups: %w", err)
	}

	seen := make(map[string]struct{}, len(invited)+len(blocked))
	out := make([]string, 0, len(invited)+len(blocked))
	for _, name := range append(invited, blocked...) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// IsDateFullyBooked reports whether every defined guest group is either
// invited or unavailable on the date.
func (s *slotRegistry) IsDateFullyBooked(ctx context.Context, date string) (bool, error) {
	booked, err := s.ListBookedGroups(ctx, date)
	if err != nil {
		return false, err
	}
	total, err := s.groupRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count groups: %w", err)
	}
	return total > 0 && len(booked) >= total, nil
}
