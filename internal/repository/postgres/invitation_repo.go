package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"iftarmatch/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = pq.ErrorCode("23505")

// Partial unique index names on invitations; both are scoped to
// status <> 'rejected' so rejected rows never occupy a slot.
const (
	slotConstraint     = "invitations_slot_idx"
	hostDateConstraint = "invitations_host_date_idx"
)

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns a domain.InvitationRepository implemented
// with Postgres.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

// Create inserts a new invitation. A unique violation on the slot or
// host-date index is the authoritative conflict signal for racing creates
// and is translated to the matching booking error.
func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (date, host_id, guest_group_name, participant_count, is_delivery, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.Date, inv.HostID, inv.GuestGroupName, inv.ParticipantCount, inv.IsDelivery,
		inv.Status, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case slotConstraint:
				return domain.ErrSlotUnavailable
			case hostDateConstraint:
				return domain.ErrDuplicateHostBooking
			}
			return domain.ErrConstraintViolation
		}
		return err
	}
	return nil
}

const invitationColumns = `id, date, host_id, guest_group_name, participant_count, is_delivery, status, message, created_at, updated_at`

func scanInvitation(row interface{ Scan(dest ...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var msgNull sql.NullString
	err := row.Scan(
		&inv.ID, &inv.Date, &inv.HostID, &inv.GuestGroupName,
		&inv.ParticipantCount, &inv.IsDelivery, &inv.Status, &msgNull,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if msgNull.Valid {
		inv.Message = &msgNull.String
	}
	return inv, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) GetActiveByDateAndGroup(ctx context.Context, date, groupName string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE date = $1 AND guest_group_name = $2 AND status <> 'rejected'
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, date, groupName))
}

func (r *invitationRepository) GetActiveByDateAndHost(ctx context.Context, date, hostID string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE date = $1 AND host_id = $2 AND status <> 'rejected'
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, date, hostID))
}

func (r *invitationRepository) ListActiveGroupNamesByDate(ctx context.Context, date string) ([]string, error) {
	query := `
		SELECT guest_group_name
		FROM invitations
		WHERE date = $1 AND status <> 'rejected'
	`
	rows, err := r.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *invitationRepository) List(ctx context.Context) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations ORDER BY date, created_at`
	return r.queryInvitations(ctx, query)
}

func (r *invitationRepository) ListByHostID(ctx context.Context, hostID string) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE host_id = $1 ORDER BY date, created_at`
	return r.queryInvitations(ctx, query, hostID)
}

func (r *invitationRepository) ListByGroupName(ctx context.Context, groupName string) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE guest_group_name = $1 ORDER BY date, created_at`
	return r.queryInvitations(ctx, query, groupName)
}

func (r *invitationRepository) queryInvitations(ctx context.Context, query string, args ...any) ([]*domain.Invitation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	invitations := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus, message string, updatedAt time.Time) error {
	query := `
		UPDATE invitations
		SET status = $1, message = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.DB.ExecContext(ctx, query, status, message, updatedAt, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) UpdateDetails(ctx context.Context, id string, participantCount int, isDelivery bool, updatedAt time.Time) error {
	query := `
		UPDATE invitations
		SET participant_count = $1, is_delivery = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.DB.ExecContext(ctx, query, participantCount, isDelivery, updatedAt, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM invitations WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
