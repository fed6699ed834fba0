package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"iftarmatch/internal/domain"
)

type unavailabilityRepository struct {
	DB *sql.DB
}

// NewGroupUnavailabilityRepository returns a domain.GroupUnavailabilityRepository
// implemented with Postgres.
func NewGroupUnavailabilityRepository(db *sql.DB) domain.GroupUnavailabilityRepository {
	return &unavailabilityRepository{DB: db}
}

func (r *unavailabilityRepository) Create(ctx context.Context, u *domain.GroupUnavailability) error {
	query := `
		INSERT INTO group_unavailability (guest_group_name, date, reason, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.GuestGroupName, u.Date, u.Reason, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConstraintViolation
		}
		return err
	}
	return nil
}

func (r *unavailabilityRepository) GetByDateAndGroup(ctx context.Context, date, groupName string) (*domain.GroupUnavailability, error) {
	query := `
		SELECT id, guest_group_name, date, reason, created_at
		FROM group_unavailability
		WHERE date = $1 AND guest_group_name = $2
	`
	u := &domain.GroupUnavailability{}
	var reasonNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, date, groupName).Scan(
		&u.ID, &u.GuestGroupName, &u.Date, &reasonNull, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reasonNull.Valid {
		u.Reason = &reasonNull.String
	}
	return u, nil
}

func (r *unavailabilityRepository) ListByGroupName(ctx context.Context, groupName string) ([]*domain.GroupUnavailability, error) {
	query := `
		SELECT id, guest_group_name, date, reason, created_at
		FROM group_unavailability
		WHERE guest_group_name = $1
		ORDER BY date
	`
	rows, err := r.DB.QueryContext(ctx, query, groupName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.GroupUnavailability, 0)
	for rows.Next() {
		u := &domain.GroupUnavailability{}
		var reasonNull sql.NullString
		if err := rows.Scan(&u.ID, &u.GuestGroupName, &u.Date, &reasonNull, &u.CreatedAt); err != nil {
			return nil, err
		}
		if reasonNull.Valid {
			u.Reason = &reasonNull.String
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *unavailabilityRepository) ListGroupNamesByDate(ctx context.Context, date string) ([]string, error) {
	query := `
		SELECT guest_group_name
		FROM group_unavailability
		WHERE date = $1
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

func (r *unavailabilityRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM group_unavailability WHERE id = $1`
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
