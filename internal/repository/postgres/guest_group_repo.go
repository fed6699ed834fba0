package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"iftarmatch/internal/domain"
)

type guestGroupRepository struct {
	DB *sql.DB
}

// NewGuestGroupRepository returns a domain.GuestGroupRepository implemented
// with Postgres.
func NewGuestGroupRepository(db *sql.DB) domain.GuestGroupRepository {
	return &guestGroupRepository{DB: db}
}

func (r *guestGroupRepository) Create(ctx context.Context, g *domain.GuestGroup) error {
	query := `
		INSERT INTO guest_groups (name, email, participant_count, is_delivery, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		g.Name, g.Email, g.ParticipantCount, g.IsDelivery, g.Color, g.CreatedAt,
	).Scan(&g.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConstraintViolation
		}
		return err
	}
	return nil
}

const guestGroupColumns = `id, name, email, participant_count, is_delivery, color, created_at`

func scanGuestGroup(row interface{ Scan(dest ...any) error }) (*domain.GuestGroup, error) {
	g := &domain.GuestGroup{}
	var colorNull sql.NullString
	err := row.Scan(&g.ID, &g.Name, &g.Email, &g.ParticipantCount, &g.IsDelivery, &colorNull, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if colorNull.Valid {
		g.Color = &colorNull.String
	}
	return g, nil
}

func (r *guestGroupRepository) GetByID(ctx context.Context, id string) (*domain.GuestGroup, error) {
	query := `SELECT ` + guestGroupColumns + ` FROM guest_groups WHERE id = $1`
	return scanGuestGroup(r.DB.QueryRowContext(ctx, query, id))
}

func (r *guestGroupRepository) GetByName(ctx context.Context, name string) (*domain.GuestGroup, error) {
	query := `SELECT ` + guestGroupColumns + ` FROM guest_groups WHERE name = $1`
	return scanGuestGroup(r.DB.QueryRowContext(ctx, query, name))
}

func (r *guestGroupRepository) List(ctx context.Context) ([]*domain.GuestGroup, error) {
	query := `SELECT ` + guestGroupColumns + ` FROM guest_groups ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := make([]*domain.GuestGroup, 0)
	for rows.Next() {
		g, err := scanGuestGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *guestGroupRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM guest_groups`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateWithCascade rewrites the group row in a single transaction. The
// guest_group_name foreign keys are ON UPDATE CASCADE, so the rename itself
// moves the assignment, invitation, and unavailability keys; the follow-up
// statements therefore key on the new name to refresh the assignment email
// and stamp the touched invitations.
func (r *guestGroupRepository) UpdateWithCascade(ctx context.Context, id, oldName string, g *domain.GuestGroup) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rename tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE guest_groups
		SET name = $1, email = $2, participant_count = $3, is_delivery = $4, color = $5
		WHERE id = $6
	`, g.Name, g.Email, g.ParticipantCount, g.IsDelivery, g.Color, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConstraintViolation
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE group_assignments
		SET email = $1, updated_at = $2
		WHERE guest_group_name = $3
	`, g.Email, now, g.Name); err != nil {
		return err
	}

	if g.Name != oldName {
		if _, err := tx.ExecContext(ctx, `
			UPDATE invitations
			SET updated_at = $1
			WHERE guest_group_name = $2
		`, now, g.Name); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *guestGroupRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM guest_groups WHERE id = $1`
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
