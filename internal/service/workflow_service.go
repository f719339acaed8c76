package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/events"
	"github.com/spec-kit/eservicedesk/internal/simrs"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

const summaryCacheKeyPrefix = "eservicedesk:summary:"

// WorkflowService exposes the status workflow surface: bucket listings,
// transition requests and summary counts. The six buckets are a flat
// classification over remote state; transition rules themselves are enforced
// (or not) by the external system.
type WorkflowService struct {
	client     simrs.Client
	cache      *redis.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// WorkflowDependencies bundles collaborators for the service.
type WorkflowDependencies struct {
	Client     simrs.Client
	Cache      *redis.Client
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	svc := &WorkflowService{
		client:     deps.Client,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cacheTTL:   deps.CacheTTL,
	}
	if svc.cacheTTL <= 0 {
		svc.cacheTTL = 15 * time.Second
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// ListBucket returns every order currently in one workflow bucket. Embedded
// detail/history travel with the list items when the remote side provides
// them, saving a second round trip.
func (s *WorkflowService) ListBucket(ctx context.Context, creds simrs.Credentials, status domain.OrderStatusCode) ([]domain.Order, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("unknown status code", map[string]any{"status_code": int(status)})
	}
	return s.client.ListByStatus(ctx, creds, status)
}

// OrderDetail fetches one order individually. Used as the fallback when a
// deep-linked order is not in the currently loaded bucket.
func (s *WorkflowService) OrderDetail(ctx context.Context, creds simrs.Credentials, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperrors.NewValidationError("order_id required", nil)
	}
	return s.client.OrderDetail(ctx, creds, orderID)
}

// Verify closes a Done ticket as Verified. The closing note is mandatory.
func (s *WorkflowService) Verify(ctx context.Context, creds simrs.Credentials, orderID, note string) error {
	if strings.TrimSpace(orderID) == "" {
		return apperrors.NewValidationError("order_id required", nil)
	}
	if strings.TrimSpace(note) == "" {
		return apperrors.NewValidationError("closing note required", nil)
	}
	if err := s.client.VerifyOrder(ctx, creds, orderID, note); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventOrderVerified,
		OrderID: orderID,
		Payload: events.OrderVerifiedPayload{Note: note},
	})
	return nil
}

// Cancel removes a ticket from the workflow entirely.
func (s *WorkflowService) Cancel(ctx context.Context, creds simrs.Credentials, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return apperrors.NewValidationError("order_id required", nil)
	}
	if err := s.client.CancelOrder(ctx, creds, orderID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventOrderCancelled,
		OrderID: orderID,
	})
	return nil
}

// Edit updates order fields in place without changing its status.
func (s *WorkflowService) Edit(ctx context.Context, creds simrs.Credentials, input simrs.EditOrderInput) error {
	if strings.TrimSpace(input.OrderID) == "" {
		return apperrors.NewValidationError("order_id required", nil)
	}
	return s.client.EditOrder(ctx, creds, input)
}

// Delegate assigns a technician to an existing order. Unlike the escalation
// path there is no pre-assignment delay: the order is long since visible.
// Re-delegating an already assigned order overwrites the prior assignee on
// the remote side.
func (s *WorkflowService) Delegate(ctx context.Context, creds simrs.Credentials, orderID, teknisiID, namaLengkap string) error {
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(teknisiID) == "" {
		return apperrors.NewValidationError("order_id and teknisi_id required", nil)
	}
	err := s.client.AssignOrder(ctx, creds, simrs.AssignOrderInput{
		OrderID:        orderID,
		TeknisiID:      teknisiID,
		NamaLengkap:    namaLengkap,
		AssignTypeCode: "1",
		AssignDesc:     "NEW",
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventOrderDelegated,
		OrderID: orderID,
		Payload: events.OrderDelegatedPayload{TeknisiID: teknisiID, NamaLengkap: namaLengkap},
	})
	return nil
}

// AssignList returns the technician roster eligible for one order.
func (s *WorkflowService) AssignList(ctx context.Context, creds simrs.Credentials, orderID string) ([]domain.Technician, error) {
	return s.client.AssignList(ctx, creds, orderID)
}

// Summary returns per-bucket counts, served from the redis cache when fresh
// and fetched through (then written back) otherwise. The cached counts and a
// concurrently fetched bucket list are independent reads and may transiently
// disagree.
func (s *WorkflowService) Summary(ctx context.Context, creds simrs.Credentials) (domain.SummaryCounts, error) {
	if cached, ok := s.cachedSummary(ctx, creds.Username); ok {
		return cached, nil
	}
	counts, err := s.client.SummaryCounts(ctx, creds)
	if err != nil {
		return nil, err
	}
	s.storeSummary(ctx, creds.Username, counts)
	return counts, nil
}

// RefreshSummary fetches counts and rewrites the cache. Used by the poller.
func (s *WorkflowService) RefreshSummary(ctx context.Context, creds simrs.Credentials) error {
	counts, err := s.client.SummaryCounts(ctx, creds)
	if err != nil {
		return err
	}
	s.storeSummary(ctx, creds.Username, counts)
	return nil
}

func (s *WorkflowService) cachedSummary(ctx context.Context, username string) (domain.SummaryCounts, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, summaryCacheKeyPrefix+username).Bytes()
	if err != nil {
		return nil, false
	}
	var decoded map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	counts := make(domain.SummaryCounts, len(decoded))
	for key, total := range decoded {
		code, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		counts[domain.OrderStatusCode(code)] = total
	}
	return counts, true
}

func (s *WorkflowService) storeSummary(ctx context.Context, username string, counts domain.SummaryCounts) {
	if s.cache == nil {
		return
	}
	encoded := make(map[string]int, len(counts))
	for code, total := range counts {
		encoded[strconv.Itoa(int(code))] = total
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, summaryCacheKeyPrefix+username, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
