package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eservicedesk/internal/domain"
)

// TechnicianStatusRepository persists the local duty board.
type TechnicianStatusRepository interface {
	List(ctx context.Context) ([]domain.TechnicianStatus, error)
	GetByID(ctx context.Context, id string) (*domain.TechnicianStatus, error)
	Upsert(ctx context.Context, status *domain.TechnicianStatus) error
	SetDuty(ctx context.Context, id string, onDuty bool, note string) error
}

type technicianStatusRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianStatusRepository instantiates repository.
func NewTechnicianStatusRepository(pool *pgxpool.Pool) TechnicianStatusRepository {
	return &technicianStatusRepository{pool: pool}
}

func (r *technicianStatusRepository) List(ctx context.Context) ([]domain.TechnicianStatus, error) {
	const query = `
        SELECT id, teknisi_id, nama, bidang, on_duty, note, updated_at
        FROM technician_status ORDER BY nama`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TechnicianStatus
	for rows.Next() {
		var ts domain.TechnicianStatus
		if err := rows.Scan(&ts.ID, &ts.TeknisiID, &ts.Nama, &ts.Bidang, &ts.OnDuty, &ts.Note, &ts.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, ts)
	}
	return result, rows.Err()
}

func (r *technicianStatusRepository) GetByID(ctx context.Context, id string) (*domain.TechnicianStatus, error) {
	const query = `
        SELECT id, teknisi_id, nama, bidang, on_duty, note, updated_at
        FROM technician_status WHERE id=$1`
	var ts domain.TechnicianStatus
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ts.ID, &ts.TeknisiID, &ts.Nama, &ts.Bidang, &ts.OnDuty, &ts.Note, &ts.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *technicianStatusRepository) Upsert(ctx context.Context, status *domain.TechnicianStatus) error {
	const query = `
        INSERT INTO technician_status (teknisi_id, nama, bidang, on_duty, note)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (teknisi_id) DO UPDATE
        SET nama=EXCLUDED.nama, bidang=EXCLUDED.bidang, on_duty=EXCLUDED.on_duty,
            note=EXCLUDED.note, updated_at=NOW()
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		status.TeknisiID,
		status.Nama,
		status.Bidang,
		status.OnDuty,
		status.Note,
	).Scan(&status.ID, &status.UpdatedAt)
}

func (r *technicianStatusRepository) SetDuty(ctx context.Context, id string, onDuty bool, note string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE technician_status SET on_duty=$1, note=$2, updated_at=NOW() WHERE id=$3`,
		onDuty, note, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
