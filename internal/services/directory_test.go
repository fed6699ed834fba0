package services

import (
	"context"
	"testing"
	"time"

	"iftarmatch/internal/domain"

	"github.com/stretchr/testify/require"
)

type directoryFixture struct {
	service        domain.DirectoryService
	groupRepo      *fakeGroupRepo
	hostRepo       *fakeHostRepo
	assignmentRepo *fakeAssignmentRepo
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()
	groupRepo := newFakeGroupRepo()
	hostRepo := newFakeHostRepo()
	assignmentRepo := newFakeAssignmentRepo()
	resolver := NewIdentityResolver([]string{testAdminEmail}, assignmentRepo, hostRepo)
	service := NewDirectoryService(groupRepo, hostRepo, assignmentRepo, resolver,
		[]string{testAdminEmail}, 2*time.Second)
	return &directoryFixture{
		service:        service,
		groupRepo:      groupRepo,
		hostRepo:       hostRepo,
		assignmentRepo: assignmentRepo,
	}
}

func TestDirectoryService_Groups(t *testing.T) {
	ctx := context.Background()

	t.Run("create assigns the contact email", func(t *testing.T) {
		f := newDirectoryFixture(t)

		g := domain.NewGuestGroup("Group X", "GroupX@Example.com", 12, false, nil, time.Time{})
		require.NoError(t, f.service.CreateGroup(ctx, testAdminEmail, g))
		require.NotEmpty(t, g.ID)

		a, err := f.assignmentRepo.GetByGroupName(ctx, "Group X")
		require.NoError(t, err)
		require.Equal(t, "groupx@example.com", a.Email)
	})

	t.Run("non-admin cannot create", func(t *testing.T) {
		f := newDirectoryFixture(t)
		g := domain.NewGuestGroup("Group X", "groupx@example.com", 12, false, nil, time.Time{})
		require.ErrorIs(t, f.service.CreateGroup(ctx, "host@example.com", g), domain.ErrForbidden)
	})

	t.Run("invalid group is rejected", func(t *testing.T) {
		f := newDirectoryFixture(t)
		g := domain.NewGuestGroup("", "groupx@example.com", 0, false, nil, time.Time{})
		require.ErrorIs(t, f.service.CreateGroup(ctx, testAdminEmail, g), domain.ErrInvalidInput)
	})

	t.Run("update rewrites the group", func(t *testing.T) {
		f := newDirectoryFixture(t)
		g := domain.NewGuestGroup("Group X", "groupx@example.com", 12, false, nil, time.Time{})
		require.NoError(t, f.service.CreateGroup(ctx, testAdminEmail, g))

		updated := domain.NewGuestGroup("Group X Renamed", "groupx@example.com", 15, true, nil, time.Time{})
		require.NoError(t, f.service.UpdateGroup(ctx, testAdminEmail, g.ID, updated))

		stored, err := f.groupRepo.GetByID(ctx, g.ID)
		require.NoError(t, err)
		require.Equal(t, "Group X Renamed", stored.Name)
		require.Equal(t, 15, stored.ParticipantCount)
		require.True(t, stored.IsDelivery)
	})

	t.Run("delete removes group and assignment", func(t *testing.T) {
		f := newDirectoryFixture(t)
		g := domain.NewGuestGroup("Group X", "groupx@example.com", 12, false, nil, time.Time{})
		require.NoError(t, f.service.CreateGroup(ctx, testAdminEmail, g))

		require.NoError(t, f.service.DeleteGroup(ctx, testAdminEmail, g.ID))
		_, err := f.groupRepo.GetByID(ctx, g.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.assignmentRepo.GetByGroupName(ctx, "Group X")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("listing is open to any resolved role", func(t *testing.T) {
		f := newDirectoryFixture(t)
		g := domain.NewGuestGroup("Group X", "groupx@example.com", 12, false, nil, time.Time{})
		require.NoError(t, f.service.CreateGroup(ctx, testAdminEmail, g))
		host := domain.NewHost("host@example.com", "Host A", nil, time.Now())
		require.NoError(t, f.hostRepo.Create(ctx, host))

		groups, err := f.service.ListGroups(ctx, "host@example.com")
		require.NoError(t, err)
		require.Len(t, groups, 1)

		_, err = f.service.ListGroups(ctx, "stranger@example.com")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDirectoryService_Hosts(t *testing.T) {
	ctx := context.Background()

	t.Run("add and remove", func(t *testing.T) {
		f := newDirectoryFixture(t)

		host, err := f.service.AddHost(ctx, testAdminEmail, "Host@Example.com", "Host A")
		require.NoError(t, err)
		require.Equal(t, "host@example.com", host.Email)

		require.NoError(t, f.service.RemoveHost(ctx, testAdminEmail, host.ID))
		_, err = f.hostRepo.GetByID(ctx, host.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate email is a constraint violation", func(t *testing.T) {
		f := newDirectoryFixture(t)
		_, err := f.service.AddHost(ctx, testAdminEmail, "host@example.com", "Host A")
		require.NoError(t, err)
		_, err = f.service.AddHost(ctx, testAdminEmail, "host@example.com", "Host A Again")
		require.ErrorIs(t, err, domain.ErrConstraintViolation)
	})

	t.Run("admin host record cannot be removed", func(t *testing.T) {
		f := newDirectoryFixture(t)
		admin := domain.NewHost(testAdminEmail, "Admin", nil, time.Now())
		require.NoError(t, f.hostRepo.Create(ctx, admin))

		require.ErrorIs(t, f.service.RemoveHost(ctx, testAdminEmail, admin.ID), domain.ErrForbidden)
	})
}

func TestDirectoryService_Assignments(t *testing.T) {
	ctx := context.Background()

	t.Run("reassignment replaces the representative", func(t *testing.T) {
		f := newDirectoryFixture(t)
		g := domain.NewGuestGroup("Group X", "groupx@example.com", 12, false, nil, time.Time{})
		require.NoError(t, f.service.CreateGroup(ctx, testAdminEmail, g))

		require.NoError(t, f.service.AssignGroupEmail(ctx, testAdminEmail, "Group X", "newrep@example.com"))
		a, err := f.assignmentRepo.GetByGroupName(ctx, "Group X")
		require.NoError(t, err)
		require.Equal(t, "newrep@example.com", a.Email)

		all, err := f.service.ListAssignments(ctx, testAdminEmail)
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("unknown group cannot be assigned", func(t *testing.T) {
		f := newDirectoryFixture(t)
		err := f.service.AssignGroupEmail(ctx, testAdminEmail, "No Such Group", "rep@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
