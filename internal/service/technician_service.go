package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/repository"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// TechnicianService maintains the local duty board.
type TechnicianService struct {
	statuses repository.TechnicianStatusRepository
}

// NewTechnicianService constructs the service.
func NewTechnicianService(statuses repository.TechnicianStatusRepository) *TechnicianService {
	return &TechnicianService{statuses: statuses}
}

// ListBoard returns every duty-board row.
func (s *TechnicianService) ListBoard(ctx context.Context) ([]domain.TechnicianStatus, error) {
	board, err := s.statuses.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return board, nil
}

// UpsertBoardEntry registers or updates a technician on the board.
func (s *TechnicianService) UpsertBoardEntry(ctx context.Context, status *domain.TechnicianStatus) error {
	if strings.TrimSpace(status.TeknisiID) == "" || strings.TrimSpace(status.Nama) == "" {
		return apperrors.NewValidationError("teknisi_id and nama required", nil)
	}
	if err := s.statuses.Upsert(ctx, status); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// SetDuty flips availability for one technician.
func (s *TechnicianService) SetDuty(ctx context.Context, id string, onDuty bool, note string) error {
	if err := s.statuses.SetDuty(ctx, id, onDuty, note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("technician", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
