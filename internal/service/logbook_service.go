package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/repository"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// LogbookService owns the local pre-ticket records.
type LogbookService struct {
	logbook repository.LogbookRepository
}

// NewLogbookService constructs the service.
func NewLogbookService(logbook repository.LogbookRepository) *LogbookService {
	return &LogbookService{logbook: logbook}
}

// LogbookCreateInput describes entry creation payload.
type LogbookCreateInput struct {
	Extensi string
	Nama    string
	Lokasi  string
	Catatan string
	Status  domain.LogbookStatus
}

// LogbookListFilter describes listing filters.
type LogbookListFilter struct {
	Statuses    []domain.LogbookStatus
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// Create records a new logbook entry.
func (s *LogbookService) Create(ctx context.Context, userID string, input LogbookCreateInput) (*domain.LogbookEntry, error) {
	if strings.TrimSpace(input.Catatan) == "" {
		return nil, apperrors.NewValidationError("catatan required", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.LogbookStatusDraft
	}
	if !domain.IsValidLogbookStatus(status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
	}
	entry := &domain.LogbookEntry{
		Extensi:   strings.TrimSpace(input.Extensi),
		Nama:      strings.TrimSpace(input.Nama),
		Lokasi:    strings.TrimSpace(input.Lokasi),
		Catatan:   strings.TrimSpace(input.Catatan),
		Status:    status,
		CreatedBy: userID,
	}
	if err := s.logbook.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// List returns entries matching the filter.
func (s *LogbookService) List(ctx context.Context, filter LogbookListFilter) ([]domain.LogbookEntry, error) {
	entries, err := s.logbook.ListWithFilter(ctx, repository.LogbookFilter{
		Statuses:    filter.Statuses,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Get fetches one entry.
func (s *LogbookService) Get(ctx context.Context, id string) (*domain.LogbookEntry, error) {
	entry, err := s.logbook.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("logbook entry", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// Update mutates an entry. Last write wins; there is no version check.
func (s *LogbookService) Update(ctx context.Context, id string, input LogbookCreateInput) (*domain.LogbookEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Catatan) == "" {
		return nil, apperrors.NewValidationError("catatan required", nil)
	}
	if input.Status != "" && !domain.IsValidLogbookStatus(input.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(input.Status)})
	}
	entry.Extensi = strings.TrimSpace(input.Extensi)
	entry.Nama = strings.TrimSpace(input.Nama)
	entry.Lokasi = strings.TrimSpace(input.Lokasi)
	entry.Catatan = strings.TrimSpace(input.Catatan)
	if input.Status != "" {
		entry.Status = input.Status
	}
	if err := s.logbook.Update(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// Delete removes one entry.
func (s *LogbookService) Delete(ctx context.Context, id string) error {
	if err := s.logbook.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("logbook entry", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// DeleteMany removes a set of entries, returning how many existed.
func (s *LogbookService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("ids required", nil)
	}
	deleted, err := s.logbook.DeleteMany(ctx, ids)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return deleted, nil
}
