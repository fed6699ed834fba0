package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"iftarmatch/internal/domain"
)

type groupAssignmentRepository struct {
	DB *sql.DB
}

// NewGroupAssignmentRepository returns a domain.GroupAssignmentRepository
// implemented with Postgres.
func NewGroupAssignmentRepository(db *sql.DB) domain.GroupAssignmentRepository {
	return &groupAssignmentRepository{DB: db}
}

// Upsert inserts or replaces the single assignment for a group name.
func (r *groupAssignmentRepository) Upsert(ctx context.Context, groupName, email string) error {
	query := `
		INSERT INTO group_assignments (guest_group_name, email, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (guest_group_name)
		DO UPDATE SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, groupName, email, time.Now())
	return err
}

func (r *groupAssignmentRepository) GetByEmail(ctx context.Context, email string) (*domain.GroupAssignment, error) {
	query := `
		SELECT guest_group_name, email, updated_at
		FROM group_assignments
		WHERE email = $1
	`
	return r.scanAssignment(r.DB.QueryRowContext(ctx, query, email))
}

func (r *groupAssignmentRepository) GetByGroupName(ctx context.Context, groupName string) (*domain.GroupAssignment, error) {
	query := `
		SELECT guest_group_name, email, updated_at
		FROM group_assignments
		WHERE guest_group_name = $1
	`
	return r.scanAssignment(r.DB.QueryRowContext(ctx, query, groupName))
}

func (r *groupAssignmentRepository) scanAssignment(row *sql.Row) (*domain.GroupAssignment, error) {
	a := &domain.GroupAssignment{}
	err := row.Scan(&a.GuestGroupName, &a.Email, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *groupAssignmentRepository) List(ctx context.Context) ([]*domain.GroupAssignment, error) {
	query := `
		SELECT guest_group_name, email, updated_at
		FROM group_assignments
		ORDER BY guest_group_name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	assignments := make([]*domain.GroupAssignment, 0)
	for rows.Next() {
		a := &domain.GroupAssignment{}
		if err := rows.Scan(&a.GuestGroupName, &a.Email, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *groupAssignmentRepository) DeleteByGroupName(ctx context.Context, groupName string) error {
	query := `DELETE FROM group_assignments WHERE guest_group_name = $1`
	_, err := r.DB.ExecContext(ctx, query, groupName)
	return err
}
