package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/events"
	"github.com/spec-kit/eservicedesk/internal/observability"
	"github.com/spec-kit/eservicedesk/internal/repository"
	"github.com/spec-kit/eservicedesk/internal/simrs"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// fakeSimrsClient records every outbound call in order. Create failures are
// keyed by catatan so bulk runs can fail specific entries.
type fakeSimrsClient struct {
	mu         sync.Mutex
	calls      []string
	created    []simrs.CreateOrderInput
	assigned   []simrs.AssignOrderInput
	nextID     int
	failCreate map[string]string
	assignErr  error
}

func newFakeSimrsClient() *fakeSimrsClient {
	return &fakeSimrsClient{failCreate: map[string]string{}}
}

func (f *fakeSimrsClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeSimrsClient) CreateOrder(ctx context.Context, creds simrs.Credentials, input simrs.CreateOrderInput) (string, error) {
	f.record("create")
	if msg, ok := f.failCreate[input.Catatan]; ok {
		return "", apperrors.NewUpstreamError(msg, nil)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, input)
	f.nextID++
	return fmt.Sprintf("ORD-%d", f.nextID), nil
}

func (f *fakeSimrsClient) AssignOrder(ctx context.Context, creds simrs.Credentials, input simrs.AssignOrderInput) error {
	f.record("assign")
	if f.assignErr != nil {
		return f.assignErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned = append(f.assigned, input)
	return nil
}

func (f *fakeSimrsClient) CancelOrder(ctx context.Context, creds simrs.Credentials, orderID string) error {
	f.record("cancel")
	return nil
}

func (f *fakeSimrsClient) EditOrder(ctx context.Context, creds simrs.Credentials, input simrs.EditOrderInput) error {
	f.record("edit")
	return nil
}

func (f *fakeSimrsClient) VerifyOrder(ctx context.Context, creds simrs.Credentials, orderID, note string) error {
	f.record("verify")
	return nil
}

func (f *fakeSimrsClient) ListByStatus(ctx context.Context, creds simrs.Credentials, status domain.OrderStatusCode) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeSimrsClient) OrderDetail(ctx context.Context, creds simrs.Credentials, orderID string) (*domain.Order, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeSimrsClient) SummaryCounts(ctx context.Context, creds simrs.Credentials) (domain.SummaryCounts, error) {
	return domain.SummaryCounts{}, nil
}

func (f *fakeSimrsClient) AssignList(ctx context.Context, creds simrs.Credentials, orderID string) ([]domain.Technician, error) {
	return nil, nil
}

// fakeLogbookRepo keeps entries in memory and records status writes.
type fakeLogbookRepo struct {
	mu            sync.Mutex
	entries       map[string]*domain.LogbookEntry
	statusWrites  []string
	failStatusFor map[string]bool
}

func newFakeLogbookRepo(entries ...*domain.LogbookEntry) *fakeLogbookRepo {
	repo := &fakeLogbookRepo{
		entries:       map[string]*domain.LogbookEntry{},
		failStatusFor: map[string]bool{},
	}
	for _, entry := range entries {
		repo.entries[entry.ID] = entry
	}
	return repo
}

func (f *fakeLogbookRepo) Create(ctx context.Context, entry *domain.LogbookEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeLogbookRepo) Update(ctx context.Context, entry *domain.LogbookEntry) error {
	return nil
}

func (f *fakeLogbookRepo) UpdateStatus(ctx context.Context, id string, status domain.LogbookStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStatusFor[id] {
		return fmt.Errorf("write failed")
	}
	entry, ok := f.entries[id]
	if !ok {
		return pgx.ErrNoRows
	}
	entry.Status = status
	f.statusWrites = append(f.statusWrites, id)
	return nil
}

func (f *fakeLogbookRepo) GetByID(ctx context.Context, id string) (*domain.LogbookEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeLogbookRepo) ListWithFilter(ctx context.Context, filter repository.LogbookFilter) ([]domain.LogbookEntry, error) {
	return nil, nil
}

func (f *fakeLogbookRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeLogbookRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	return 0, nil
}

// sleepRecorder replaces real delays and records them alongside the client's
// call log so ordering between delays and HTTP calls is checkable.
type sleepRecorder struct {
	client *fakeSimrsClient
	mu     sync.Mutex
	slept  []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	if s.client != nil {
		s.client.record(fmt.Sprintf("sleep:%s", d))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return nil
}

func newTestService(client *fakeSimrsClient, logbook *fakeLogbookRepo) (*EscalationService, *sleepRecorder) {
	recorder := &sleepRecorder{client: client}
	svc := NewEscalationService(EscalationDependencies{
		Client:      client,
		LogbookRepo: logbook,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Metrics:     observability.NewMetrics(),
		Sleep:       recorder.sleep,
	})
	return svc, recorder
}

func testCreds() simrs.Credentials {
	return simrs.Credentials{Username: "webmin", Password: "secret", BaseURL: "http://simrs.test"}
}

func logbookEntry(id string) *domain.LogbookEntry {
	return &domain.LogbookEntry{
		ID:      id,
		Extensi: "123",
		Nama:    "Pak Agus",
		Lokasi:  "Poli Dalam",
		Catatan: "No dial tone",
		Status:  domain.LogbookStatusDraft,
	}
}

func TestEscalateCreatesThenDelegates(t *testing.T) {
	client := newFakeSimrsClient()
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	svc, _ := newTestService(client, logbook)

	result, err := svc.Escalate(context.Background(), testCreds(), EscalateInput{
		LogbookID:        "lb-1",
		Catatan:          "No dial tone",
		ExtPhone:         "123",
		LocationDesc:     "Poli Dalam",
		ServiceCatalogID: "11",
		TeknisiID:        "42",
		NamaLengkap:      "Budi Santoso",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreatedDelegated, result.Outcome)
	assert.Equal(t, "ORD-1", result.OrderID)

	// Delegation must never precede the creation response, and the
	// consistency delay sits between the two calls.
	assert.Equal(t, []string{"create", "sleep:1s", "assign"}, client.calls)
	require.Len(t, client.created, 1)
	assert.Equal(t, "lb-1", client.created[0].LogbookID)
	require.Len(t, client.assigned, 1)
	assert.Equal(t, "ORD-1", client.assigned[0].OrderID)
	assert.Equal(t, "42", client.assigned[0].TeknisiID)
	assert.Equal(t, "1", client.assigned[0].AssignTypeCode)
	assert.Equal(t, "NEW", client.assigned[0].AssignDesc)

	entry, err := logbook.GetByID(context.Background(), "lb-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LogbookStatusOrdered, entry.Status)
}

func TestEscalateWithoutTechnicianSkipsDelegation(t *testing.T) {
	client := newFakeSimrsClient()
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	svc, recorder := newTestService(client, logbook)

	result, err := svc.Escalate(context.Background(), testCreds(), EscalateInput{
		LogbookID:        "lb-1",
		Catatan:          "No dial tone",
		ExtPhone:         "123",
		LocationDesc:     "Poli Dalam",
		ServiceCatalogID: "11",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.NotEmpty(t, result.OrderID)
	assert.Equal(t, []string{"create"}, client.calls)
	assert.Empty(t, recorder.slept)

	entry, _ := logbook.GetByID(context.Background(), "lb-1")
	assert.Equal(t, domain.LogbookStatusOrdered, entry.Status)
}

func TestNoDelegationOnCreationFailure(t *testing.T) {
	client := newFakeSimrsClient()
	client.failCreate["No dial tone"] = "nomor extensi tidak terdaftar"
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	svc, _ := newTestService(client, logbook)

	_, err := svc.Escalate(context.Background(), testCreds(), EscalateInput{
		LogbookID:        "lb-1",
		Catatan:          "No dial tone",
		ServiceCatalogID: "11",
		TeknisiID:        "42",
		NamaLengkap:      "Budi Santoso",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nomor extensi tidak terdaftar")

	assert.Equal(t, []string{"create"}, client.calls)
	entry, _ := logbook.GetByID(context.Background(), "lb-1")
	assert.Equal(t, domain.LogbookStatusDraft, entry.Status)
	assert.Empty(t, logbook.statusWrites)
}

func TestDelegationFailureIsPartialSuccess(t *testing.T) {
	client := newFakeSimrsClient()
	client.assignErr = apperrors.NewUpstreamError("teknisi sedang cuti", nil)
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	svc, _ := newTestService(client, logbook)

	result, err := svc.Escalate(context.Background(), testCreds(), EscalateInput{
		LogbookID:        "lb-1",
		Catatan:          "No dial tone",
		ServiceCatalogID: "11",
		TeknisiID:        "42",
		NamaLengkap:      "Budi Santoso",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreatedDelegationFailed, result.Outcome)
	assert.Equal(t, "ORD-1", result.OrderID)
	assert.Contains(t, result.Message, "teknisi sedang cuti")

	// Ticket creation is not rolled back and the logbook still syncs.
	entry, _ := logbook.GetByID(context.Background(), "lb-1")
	assert.Equal(t, domain.LogbookStatusOrdered, entry.Status)

	// No automatic retry.
	assert.Equal(t, []string{"create", "sleep:1s", "assign"}, client.calls)
}

func TestDelegationAndSyncFailuresBothSurfaced(t *testing.T) {
	client := newFakeSimrsClient()
	client.assignErr = apperrors.NewUpstreamError("teknisi sedang cuti", nil)
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	logbook.failStatusFor["lb-1"] = true
	svc, _ := newTestService(client, logbook)

	result, err := svc.Escalate(context.Background(), testCreds(), EscalateInput{
		LogbookID:        "lb-1",
		Catatan:          "No dial tone",
		ServiceCatalogID: "11",
		TeknisiID:        "42",
		NamaLengkap:      "Budi Santoso",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreatedDelegationFailed, result.Outcome)
	assert.Contains(t, result.Message, "teknisi sedang cuti")
	assert.Contains(t, result.Message, "local logbook update also failed")
}

func TestLocalSyncFailureIsReported(t *testing.T) {
	client := newFakeSimrsClient()
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	logbook.failStatusFor["lb-1"] = true
	svc, _ := newTestService(client, logbook)

	result, err := svc.Escalate(context.Background(), testCreds(), EscalateInput{
		LogbookID:        "lb-1",
		Catatan:          "No dial tone",
		ServiceCatalogID: "11",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreatedSyncFailed, result.Outcome)
	assert.Equal(t, "ORD-1", result.OrderID)
}

func TestDuplicateEscalationProducesDistinctOrders(t *testing.T) {
	client := newFakeSimrsClient()
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	svc, _ := newTestService(client, logbook)

	input := EscalateInput{LogbookID: "lb-1", Catatan: "No dial tone", ServiceCatalogID: "11"}
	first, err := svc.Escalate(context.Background(), testCreds(), input)
	require.NoError(t, err)
	second, err := svc.Escalate(context.Background(), testCreds(), input)
	require.NoError(t, err)

	// No duplicate detection: the same entry escalated twice yields two
	// distinct external tickets.
	assert.NotEqual(t, first.OrderID, second.OrderID)
	assert.Len(t, client.created, 2)
}

func TestBulkAggregateCounts(t *testing.T) {
	client := newFakeSimrsClient()
	entries := make([]*domain.LogbookEntry, 0, 5)
	items := make([]BulkEscalateItem, 0, 5)
	for i := 1; i <= 5; i++ {
		entry := logbookEntry(fmt.Sprintf("lb-%d", i))
		entry.Catatan = fmt.Sprintf("complaint %d", i)
		entries = append(entries, entry)
		items = append(items, BulkEscalateItem{LogbookID: entry.ID, ServiceCatalogID: "11"})
	}
	// Two simulated failures.
	client.failCreate["complaint 2"] = "gagal"
	client.failCreate["complaint 4"] = "gagal"
	logbook := newFakeLogbookRepo(entries...)
	svc, recorder := newTestService(client, logbook)

	result, err := svc.EscalateBatch(context.Background(), testCreds(), items)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 2, result.FailCount)
	assert.Equal(t, result.Total, result.SuccessCount+result.FailCount)

	// Strictly sequential in input order.
	var created []string
	for _, input := range client.created {
		created = append(created, input.Catatan)
	}
	assert.Equal(t, []string{"complaint 1", "complaint 3", "complaint 5"}, created)

	// One throttle pause per item: total wall time is at least N x 500ms.
	throttles := 0
	for _, d := range recorder.slept {
		if d == BulkThrottleDelay {
			throttles++
		}
	}
	assert.Equal(t, 5, throttles)
}

func TestBulkContinuesPastMissingEntry(t *testing.T) {
	client := newFakeSimrsClient()
	logbook := newFakeLogbookRepo(logbookEntry("lb-1"))
	svc, _ := newTestService(client, logbook)

	result, err := svc.EscalateBatch(context.Background(), testCreds(), []BulkEscalateItem{
		{LogbookID: "missing", ServiceCatalogID: "11"},
		{LogbookID: "lb-1", ServiceCatalogID: "11"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
}

func TestBulkDelegationUsesConsistencyDelayPerItem(t *testing.T) {
	client := newFakeSimrsClient()
	entryA := logbookEntry("lb-a")
	entryA.Catatan = "complaint a"
	entryB := logbookEntry("lb-b")
	entryB.Catatan = "complaint b"
	logbook := newFakeLogbookRepo(entryA, entryB)
	svc, _ := newTestService(client, logbook)

	result, err := svc.EscalateBatch(context.Background(), testCreds(), []BulkEscalateItem{
		{LogbookID: "lb-a", ServiceCatalogID: "11"},
		{LogbookID: "lb-b", ServiceCatalogID: "11", TeknisiID: "42", NamaLengkap: "Budi Santoso"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)

	// Second item delegates: create, consistency delay, assign carrying the
	// order id from that item's create response.
	assert.Equal(t, []string{
		"create", "sleep:500ms",
		"create", "sleep:1s", "assign", "sleep:500ms",
	}, client.calls)
	require.Len(t, client.assigned, 1)
	assert.Equal(t, "ORD-2", client.assigned[0].OrderID)
}
