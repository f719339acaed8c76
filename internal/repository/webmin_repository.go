package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eservicedesk/internal/domain"
)

// WebminRepository stores the per-user SIMRS credentials.
type WebminRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.WebminCredential, error)
	Upsert(ctx context.Context, cred *domain.WebminCredential) error
}

type webminRepository struct {
	pool *pgxpool.Pool
}

// NewWebminRepository instantiates repository.
func NewWebminRepository(pool *pgxpool.Pool) WebminRepository {
	return &webminRepository{pool: pool}
}

func (r *webminRepository) GetByUserID(ctx context.Context, userID string) (*domain.WebminCredential, error) {
	const query = `
        SELECT user_id, webmin_user, webmin_pass, base_url_override, updated_at
        FROM webmin_users WHERE user_id=$1`
	var cred domain.WebminCredential
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&cred.UserID,
		&cred.WebminUser,
		&cred.WebminPass,
		&cred.BaseURLOverride,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *webminRepository) Upsert(ctx context.Context, cred *domain.WebminCredential) error {
	const query = `
        INSERT INTO webmin_users (user_id, webmin_user, webmin_pass, base_url_override)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id) DO UPDATE
        SET webmin_user=EXCLUDED.webmin_user,
            webmin_pass=EXCLUDED.webmin_pass,
            base_url_override=EXCLUDED.base_url_override,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		cred.UserID,
		cred.WebminUser,
		cred.WebminPass,
		cred.BaseURLOverride,
	).Scan(&cred.UpdatedAt)
}
