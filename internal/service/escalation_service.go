package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/events"
	"github.com/spec-kit/eservicedesk/internal/observability"
	"github.com/spec-kit/eservicedesk/internal/repository"
	"github.com/spec-kit/eservicedesk/internal/simrs"
)

// Pacing constants for the external ticket system. SIMRS is eventually
// consistent after a create, and bulk traffic has been observed to overload
// it. Both values are heuristics, not negotiated guarantees.
const (
	ExternalConsistencyDelay = 1000 * time.Millisecond
	BulkThrottleDelay        = 500 * time.Millisecond
)

// SleepFunc pauses for the given duration, returning early if ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EscalationOutcome classifies how far a single escalation got.
type EscalationOutcome string

const (
	OutcomeFailed                  EscalationOutcome = "failed"
	OutcomeCreated                 EscalationOutcome = "created"
	OutcomeCreatedDelegated        EscalationOutcome = "created_delegated"
	OutcomeCreatedDelegationFailed EscalationOutcome = "created_delegation_failed"
	OutcomeCreatedSyncFailed       EscalationOutcome = "created_sync_failed"
)

// Succeeded reports whether an external ticket exists after this outcome.
func (o EscalationOutcome) Succeeded() bool {
	return o != OutcomeFailed && o != ""
}

// EscalateInput carries the fields for one escalation. The technician fields
// are optional; when empty, no delegation is attempted.
type EscalateInput struct {
	LogbookID        string
	Catatan          string
	ExtPhone         string
	LocationDesc     string
	ServiceCatalogID string
	TeknisiID        string
	NamaLengkap      string
}

// EscalationResult is the combined outcome reported to the caller.
type EscalationResult struct {
	Outcome EscalationOutcome
	OrderID string
	Message string
}

// BulkEscalateItem selects one logbook entry and its per-entry choices.
type BulkEscalateItem struct {
	LogbookID        string
	ServiceCatalogID string
	TeknisiID        string
	NamaLengkap      string
}

// BulkResult aggregates a bulk run. No per-item detail is kept beyond counts.
type BulkResult struct {
	Total        int
	SuccessCount int
	FailCount    int
}

// EscalationService orchestrates creating external tickets from logbook
// entries: create, optionally delegate after a fixed delay, then sync the
// local record. There is no transaction across these steps; every partial
// state is reported, none is rolled back.
type EscalationService struct {
	client           simrs.Client
	logbook          repository.LogbookRepository
	dispatcher       events.Dispatcher
	metrics          *observability.Metrics
	logger           *zap.Logger
	consistencyDelay time.Duration
	bulkThrottle     time.Duration
	sleep            SleepFunc
}

// EscalationDependencies bundles collaborators for the service.
type EscalationDependencies struct {
	Client      simrs.Client
	LogbookRepo repository.LogbookRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	// ConsistencyDelay and BulkThrottle default to the package constants.
	ConsistencyDelay time.Duration
	BulkThrottle     time.Duration
	// Sleep defaults to a ctx-aware timer; tests inject a recorder.
	Sleep SleepFunc
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	svc := &EscalationService{
		client:           deps.Client,
		logbook:          deps.LogbookRepo,
		dispatcher:       deps.Dispatcher,
		metrics:          deps.Metrics,
		logger:           deps.Logger,
		consistencyDelay: deps.ConsistencyDelay,
		bulkThrottle:     deps.BulkThrottle,
		sleep:            deps.Sleep,
	}
	if svc.consistencyDelay <= 0 {
		svc.consistencyDelay = ExternalConsistencyDelay
	}
	if svc.bulkThrottle <= 0 {
		svc.bulkThrottle = BulkThrottleDelay
	}
	if svc.sleep == nil {
		svc.sleep = defaultSleep
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Escalate runs one escalation end to end. The returned error is non-nil only
// when the external creation itself failed; every post-creation failure is a
// partial success reported through the result.
//
// No duplicate detection is performed: escalating the same logbook entry
// twice produces two distinct external tickets.
func (s *EscalationService) Escalate(ctx context.Context, creds simrs.Credentials, input EscalateInput) (*EscalationResult, error) {
	orderID, err := s.client.CreateOrder(ctx, creds, simrs.CreateOrderInput{
		Catatan:          input.Catatan,
		ExtPhone:         input.ExtPhone,
		LocationDesc:     input.LocationDesc,
		ServiceCatalogID: input.ServiceCatalogID,
		LogbookID:        input.LogbookID,
	})
	if err != nil {
		// Creation failed: no delegation, no local mutation.
		s.metrics.RecordEscalation(string(OutcomeFailed))
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventOrderCreated,
		OrderID: orderID,
		Payload: events.OrderCreatedPayload{
			LogbookID:        input.LogbookID,
			ServiceCatalogID: input.ServiceCatalogID,
			LocationDesc:     input.LocationDesc,
		},
	})

	delegated := false
	var delegationErr error
	if input.TeknisiID != "" {
		// The order is not reliably readable on the remote side immediately
		// after creation; wait out the consistency window before assigning.
		if err := s.sleep(ctx, s.consistencyDelay); err != nil {
			delegationErr = err
		} else {
			delegationErr = s.client.AssignOrder(ctx, creds, simrs.AssignOrderInput{
				OrderID:        orderID,
				TeknisiID:      input.TeknisiID,
				NamaLengkap:    input.NamaLengkap,
				AssignTypeCode: "1",
				AssignDesc:     "NEW",
			})
		}
		if delegationErr != nil {
			// Not retried: the ticket stays created-but-unassigned and a
			// human re-delegates from the workflow surface.
			s.metrics.RecordDelegationFailure()
			s.logger.Warn("delegation failed after order creation",
				zap.String("order_id", orderID),
				zap.String("teknisi_id", input.TeknisiID),
				zap.Error(delegationErr))
			s.publish(ctx, events.Event{
				Type:    events.EventOrderDelegationFailed,
				OrderID: orderID,
				Payload: events.OrderDelegationFailedPayload{
					TeknisiID: input.TeknisiID,
					Reason:    delegationErr.Error(),
				},
			})
		} else {
			delegated = true
			s.publish(ctx, events.Event{
				Type:    events.EventOrderDelegated,
				OrderID: orderID,
				Payload: events.OrderDelegatedPayload{
					TeknisiID:   input.TeknisiID,
					NamaLengkap: input.NamaLengkap,
				},
			})
		}
	}

	var syncErr error
	if input.LogbookID != "" {
		syncErr = s.logbook.UpdateStatus(ctx, input.LogbookID, domain.LogbookStatusOrdered)
		if syncErr != nil {
			// The external ticket exists but the local record still says
			// otherwise. There is no compensation; surface it loudly.
			s.logger.Error("logbook status sync failed after order creation",
				zap.String("order_id", orderID),
				zap.String("logbook_id", input.LogbookID),
				zap.Error(syncErr))
		}
	}

	result := &EscalationResult{OrderID: orderID}
	switch {
	case delegationErr != nil && syncErr != nil:
		result.Outcome = OutcomeCreatedDelegationFailed
		result.Message = fmt.Sprintf("order %s created, but delegation to %s failed: %v; local logbook update also failed", orderID, input.NamaLengkap, delegationErr)
	case delegationErr != nil:
		result.Outcome = OutcomeCreatedDelegationFailed
		result.Message = fmt.Sprintf("order %s created, but delegation to %s failed: %v", orderID, input.NamaLengkap, delegationErr)
	case syncErr != nil:
		result.Outcome = OutcomeCreatedSyncFailed
		result.Message = fmt.Sprintf("order %s created, but local logbook update failed", orderID)
	case delegated:
		result.Outcome = OutcomeCreatedDelegated
		result.Message = fmt.Sprintf("order %s created and delegated to %s", orderID, input.NamaLengkap)
	default:
		result.Outcome = OutcomeCreated
		result.Message = fmt.Sprintf("order %s created", orderID)
	}
	s.metrics.RecordEscalation(string(result.Outcome))
	return result, nil
}

// EscalateBatch escalates the given entries strictly sequentially in input
// order, pausing the throttle delay after each item. Individual failures are
// counted and skipped, never fatal; the caller only sees aggregate counts.
func (s *EscalationService) EscalateBatch(ctx context.Context, creds simrs.Credentials, items []BulkEscalateItem) (*BulkResult, error) {
	result := &BulkResult{Total: len(items)}
	for _, item := range items {
		entry, err := s.logbook.GetByID(ctx, item.LogbookID)
		if err != nil {
			s.logger.Warn("bulk escalation: logbook fetch failed",
				zap.String("logbook_id", item.LogbookID), zap.Error(err))
			result.FailCount++
			if err := s.sleep(ctx, s.bulkThrottle); err != nil {
				return result, err
			}
			continue
		}

		// Note: an entry already ordered externally is still resubmitted;
		// there is no status pre-check here, so duplicates are possible when
		// the caller does not filter first.
		escalated, err := s.Escalate(ctx, creds, EscalateInput{
			LogbookID:        entry.ID,
			Catatan:          entry.Catatan,
			ExtPhone:         entry.Extensi,
			LocationDesc:     entry.Lokasi,
			ServiceCatalogID: item.ServiceCatalogID,
			TeknisiID:        item.TeknisiID,
			NamaLengkap:      item.NamaLengkap,
		})
		if err != nil || !escalated.Outcome.Succeeded() {
			result.FailCount++
		} else {
			result.SuccessCount++
		}

		if err := s.sleep(ctx, s.bulkThrottle); err != nil {
			return result, err
		}
	}

	s.publish(ctx, events.Event{
		Type: events.EventBulkEscalationFinished,
		Payload: events.BulkEscalationFinishedPayload{
			Total:        result.Total,
			SuccessCount: result.SuccessCount,
			FailCount:    result.FailCount,
		},
	})
	return result, nil
}

func (s *EscalationService) publish(ctx context.Context, event events.Event) {
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
