package postgres

import (
	"context"
	"database/sql"
	"time"

	"iftarmatch/internal/domain"
)

type loginCodeRepository struct {
	DB *sql.DB
}

// NewLoginCodeRepository returns a domain.LoginCodeRepository implemented with Postgres.
func NewLoginCodeRepository(db *sql.DB) domain.LoginCodeRepository {
	return &loginCodeRepository{DB: db}
}

func (r *loginCodeRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO login_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, email, codeHash, expiresAt)
	return err
}

// ListActive returns the unexpired codes for an email, newest first. Code
// hashes are salted, so the caller compares each candidate itself.
func (r *loginCodeRepository) ListActive(ctx context.Context, email string) ([]*domain.LoginCode, error) {
	query := `
		SELECT id, email, code_hash, expires_at
		FROM login_codes
		WHERE email = $1 AND expires_at > NOW()
		ORDER BY expires_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	codes := make([]*domain.LoginCode, 0)
	for rows.Next() {
		c := &domain.LoginCode{}
		if err := rows.Scan(&c.ID, &c.Email, &c.CodeHash, &c.ExpiresAt); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *loginCodeRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM login_codes WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}
