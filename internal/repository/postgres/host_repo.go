package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"iftarmatch/internal/domain"
)

type hostRepository struct {
	DB *sql.DB
}

// NewHostRepository returns a domain.HostRepository implemented with Postgres.
func NewHostRepository(db *sql.DB) domain.HostRepository {
	return &hostRepository{DB: db}
}

func (r *hostRepository) Create(ctx context.Context, h *domain.Host) error {
	query := `
		INSERT INTO hosts (email, name, image, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, h.Email, h.Name, h.Image, h.CreatedAt).Scan(&h.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConstraintViolation
		}
		return err
	}
	return nil
}

func (r *hostRepository) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	query := `
		SELECT id, email, name, image, created_at
		FROM hosts
		WHERE id = $1
	`
	return r.scanHost(r.DB.QueryRowContext(ctx, query, id))
}

func (r *hostRepository) GetByEmail(ctx context.Context, email string) (*domain.Host, error) {
	query := `
		SELECT id, email, name, image, created_at
		FROM hosts
		WHERE email = $1
	`
	return r.scanHost(r.DB.QueryRowContext(ctx, query, email))
}

func (r *hostRepository) scanHost(row *sql.Row) (*domain.Host, error) {
	h := &domain.Host{}
	var imageNull sql.NullString
	err := row.Scan(&h.ID, &h.Email, &h.Name, &imageNull, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if imageNull.Valid {
		h.Image = &imageNull.String
	}
	return h, nil
}

func (r *hostRepository) List(ctx context.Context) ([]*domain.Host, error) {
	query := `
		SELECT id, email, name, image, created_at
		FROM hosts
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	hosts := make([]*domain.Host, 0)
	for rows.Next() {
		h := &domain.Host{}
		var imageNull sql.NullString
		if err := rows.Scan(&h.ID, &h.Email, &h.Name, &imageNull, &h.CreatedAt); err != nil {
			return nil, err
		}
		if imageNull.Valid {
			h.Image = &imageNull.String
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

func (r *hostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM hosts WHERE id = $1`
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
