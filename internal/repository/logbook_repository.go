package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eservicedesk/internal/domain"
)

// LogbookFilter captures listing parameters.
type LogbookFilter struct {
	Statuses    []domain.LogbookStatus
	SearchTerm  *string
	CreatedBy   *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// LogbookRepository encapsulates logbook persistence.
type LogbookRepository interface {
	Create(ctx context.Context, entry *domain.LogbookEntry) error
	Update(ctx context.Context, entry *domain.LogbookEntry) error
	UpdateStatus(ctx context.Context, id string, status domain.LogbookStatus) error
	GetByID(ctx context.Context, id string) (*domain.LogbookEntry, error)
	ListWithFilter(ctx context.Context, filter LogbookFilter) ([]domain.LogbookEntry, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

type logbookRepository struct {
	pool *pgxpool.Pool
}

// NewLogbookRepository instantiates repository.
func NewLogbookRepository(pool *pgxpool.Pool) LogbookRepository {
	return &logbookRepository{pool: pool}
}

func (r *logbookRepository) Create(ctx context.Context, entry *domain.LogbookEntry) error {
	const query = `
        INSERT INTO logbook (extensi, nama, lokasi, catatan, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.Extensi,
		entry.Nama,
		entry.Lokasi,
		entry.Catatan,
		entry.Status,
		nullable(entry.CreatedBy),
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *logbookRepository) Update(ctx context.Context, entry *domain.LogbookEntry) error {
	const query = `
        UPDATE logbook SET extensi=$1, nama=$2, lokasi=$3, catatan=$4, status=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		entry.Extensi,
		entry.Nama,
		entry.Lokasi,
		entry.Catatan,
		entry.Status,
		entry.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateStatus is a single-row, last-write-wins status write. There is no
// version column: concurrent staff edits on the same entry overwrite silently.
func (r *logbookRepository) UpdateStatus(ctx context.Context, id string, status domain.LogbookStatus) error {
	const query = `UPDATE logbook SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *logbookRepository) GetByID(ctx context.Context, id string) (*domain.LogbookEntry, error) {
	const query = `
        SELECT id, extensi, nama, lokasi, catatan, status, COALESCE(created_by::text,''), created_at, updated_at
        FROM logbook WHERE id=$1`
	var entry domain.LogbookEntry
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.Extensi,
		&entry.Nama,
		&entry.Lokasi,
		&entry.Catatan,
		&entry.Status,
		&entry.CreatedBy,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *logbookRepository) ListWithFilter(ctx context.Context, filter LogbookFilter) ([]domain.LogbookEntry, error) {
	base := `SELECT id, extensi, nama, lokasi, catatan, status, COALESCE(created_by::text,''), created_at, updated_at
             FROM logbook`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(nama) LIKE %s OR LOWER(lokasi) LIKE %s OR LOWER(catatan) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogbookEntries(rows)
}

func (r *logbookRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM logbook WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *logbookRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM logbook WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanLogbookEntries(rows pgx.Rows) ([]domain.LogbookEntry, error) {
	var result []domain.LogbookEntry
	for rows.Next() {
		var entry domain.LogbookEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Extensi,
			&entry.Nama,
			&entry.Lokasi,
			&entry.Catatan,
			&entry.Status,
			&entry.CreatedBy,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func nullable(val string) any {
	if val == "" {
		return nil
	}
	return val
}
