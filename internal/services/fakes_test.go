package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"iftarmatch/internal/domain"
)

// In-memory fakes shared by the service tests. They emulate the store's
// behavior closely enough for lifecycle semantics, including the uniqueness
// rules the real Postgres indexes enforce.

type fakeHostRepo struct {
	mu    sync.Mutex
	seq   int
	hosts map[string]*domain.Host
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{hosts: make(map[string]*domain.Host)}
}

func (r *fakeHostRepo) Create(ctx context.Context, h *domain.Host) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.hosts {
		if existing.Email == h.Email {
			return domain.ErrConstraintViolation
		}
	}
	r.seq++
	h.ID = fmt.Sprintf("host-%d", r.seq)
	cp := *h
	r.hosts[h.ID] = &cp
	return nil
}

func (r *fakeHostRepo) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hosts[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeHostRepo) GetByEmail(ctx context.Context, email string) (*domain.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hosts {
		if h.Email == email {
			cp := *h
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeHostRepo) List(ctx context.Context) ([]*domain.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Host, 0, len(r.hosts))
	for _, h := range r.hosts {
		cp := *h
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeHostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hosts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.hosts, id)
	return nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	seq    int
	groups map[string]*domain.GuestGroup
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[string]*domain.GuestGroup)}
}

func (r *fakeGroupRepo) Create(ctx context.Context, g *domain.GuestGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.groups {
		if existing.Name == g.Name {
			return domain.ErrConstraintViolation
		}
	}
	r.seq++
	g.ID = fmt.Sprintf("group-%d", r.seq)
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.GuestGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeGroupRepo) GetByName(ctx context.Context, name string) (*domain.GuestGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeGroupRepo) List(ctx context.Context) ([]*domain.GuestGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.GuestGroup, 0, len(r.groups))
	for _, g := range r.groups {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeGroupRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups), nil
}

func (r *fakeGroupRepo) UpdateWithCascade(ctx context.Context, id, oldName string, g *domain.GuestGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = g.Name
	existing.Email = g.Email
	existing.ParticipantCount = g.ParticipantCount
	existing.IsDelivery = g.IsDelivery
	existing.Color = g.Color
	return nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.groups, id)
	return nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	seq         int
	invitations map[string]*domain.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[string]*domain.Invitation)}
}

// Create mirrors the partial unique indexes: a non-rejected row per
// (date, group) and per (date, host).
func (r *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invitations {
		if existing.Status == domain.StatusRejected {
			continue
		}
		if existing.Date == inv.Date && existing.GuestGroupName == inv.GuestGroupName {
			return domain.ErrSlotUnavailable
		}
		if existing.Date == inv.Date && existing.HostID == inv.HostID {
			return domain.ErrDuplicateHostBooking
		}
	}
	r.seq++
	inv.ID = fmt.Sprintf("inv-%d", r.seq)
	cp := *inv
	r.invitations[inv.ID] = &cp
	return nil
}

func (r *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invitations[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvitationRepo) GetActiveByDateAndGroup(ctx context.Context, date, groupName string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Date == date && inv.GuestGroupName == groupName && inv.Status != domain.StatusRejected {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvitationRepo) GetActiveByDateAndHost(ctx context.Context, date, hostID string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Date == date && inv.HostID == hostID && inv.Status != domain.StatusRejected {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvitationRepo) ListActiveGroupNamesByDate(ctx context.Context, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, inv := range r.invitations {
		if inv.Date == date && inv.Status != domain.StatusRejected {
			out = append(out, inv.GuestGroupName)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) List(ctx context.Context) ([]*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Invitation, 0, len(r.invitations))
	for _, inv := range r.invitations {
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvitationRepo) ListByHostID(ctx context.Context, hostID string) ([]*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range r.invitations {
		if inv.HostID == hostID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) ListByGroupName(ctx context.Context, groupName string) ([]*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range r.invitations {
		if inv.GuestGroupName == groupName {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus, message string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	inv.Message = &message
	inv.UpdatedAt = updatedAt
	return nil
}

func (r *fakeInvitationRepo) UpdateDetails(ctx context.Context, id string, participantCount int, isDelivery bool, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.ParticipantCount = participantCount
	inv.IsDelivery = isDelivery
	inv.UpdatedAt = updatedAt
	return nil
}

func (r *fakeInvitationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.invitations, id)
	return nil
}

type fakeUnavailabilityRepo struct {
	mu     sync.Mutex
	seq    int
	blocks map[string]*domain.GroupUnavailability
}

func newFakeUnavailabilityRepo() *fakeUnavailabilityRepo {
	return &fakeUnavailabilityRepo{blocks: make(map[string]*domain.GroupUnavailability)}
}

func (r *fakeUnavailabilityRepo) Create(ctx context.Context, u *domain.GroupUnavailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks {
		if b.Date == u.Date && b.GuestGroupName == u.GuestGroupName {
			return domain.ErrConstraintViolation
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("unv-%d", r.seq)
	cp := *u
	r.blocks[u.ID] = &cp
	return nil
}

func (r *fakeUnavailabilityRepo) GetByDateAndGroup(ctx context.Context, date, groupName string) (*domain.GroupUnavailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.blocks {
		if b.Date == date && b.GuestGroupName == groupName {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUnavailabilityRepo) ListByGroupName(ctx context.Context, groupName string) ([]*domain.GroupUnavailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.GroupUnavailability
	for _, b := range r.blocks {
		if b.GuestGroupName == groupName {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUnavailabilityRepo) ListGroupNamesByDate(ctx context.Context, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.blocks {
		if b.Date == date {
			out = append(out, b.GuestGroupName)
		}
	}
	return out, nil
}

func (r *fakeUnavailabilityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.blocks, id)
	return nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]*domain.GroupAssignment // keyed by group name
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*domain.GroupAssignment)}
}

func (r *fakeAssignmentRepo) Upsert(ctx context.Context, groupName, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[groupName] = &domain.GroupAssignment{
		GuestGroupName: groupName,
		Email:          strings.ToLower(email),
		UpdatedAt:      time.Now(),
	}
	return nil
}

func (r *fakeAssignmentRepo) GetByEmail(ctx context.Context, email string) (*domain.GroupAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeAssignmentRepo) GetByGroupName(ctx context.Context, groupName string) (*domain.GroupAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[groupName]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeAssignmentRepo) List(ctx context.Context) ([]*domain.GroupAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.GroupAssignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) DeleteByGroupName(ctx context.Context, groupName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[groupName]; !ok {
		return domain.ErrNotFound
	}
	delete(r.assignments, groupName)
	return nil
}

type sentEmail struct {
	kind string
	to   string
}

type fakeEmailService struct {
	mu       sync.Mutex
	sent     []sentEmail
	lastCode string
	err      error
}

func (s *fakeEmailService) record(kind, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{kind: kind, to: to})
	return nil
}

func (s *fakeEmailService) sentTo(kind string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.sent {
		if e.kind == kind {
			out = append(out, e.to)
		}
	}
	return out
}

func (s *fakeEmailService) SendNewInvitation(ctx context.Context, data *domain.NewInvitationEmailData) error {
	return s.record("new_invitation", data.Email)
}

func (s *fakeEmailService) SendInvitationAccepted(ctx context.Context, data *domain.InvitationAcceptedEmailData) error {
	return s.record("invitation_accepted", data.Email)
}

func (s *fakeEmailService) SendInvitationRejected(ctx context.Context, data *domain.InvitationRejectedEmailData) error {
	return s.record("invitation_rejected", data.Email)
}

func (s *fakeEmailService) SendNoShowAlert(ctx context.Context, data *domain.NoShowAlertEmailData) error {
	return s.record("no_show_alert", data.Email)
}

func (s *fakeEmailService) SendLoginCode(ctx context.Context, data *domain.LoginCodeEmailData) error {
	s.mu.Lock()
	s.lastCode = data.Code
	s.mu.Unlock()
	return s.record("login_code", data.Email)
}
