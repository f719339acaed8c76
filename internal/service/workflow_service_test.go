package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/eservicedesk/internal/domain"
	"github.com/spec-kit/eservicedesk/internal/events"
	"github.com/spec-kit/eservicedesk/internal/simrs"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

// fakeOrderStore simulates the remote ticket system with in-memory orders so
// transition requests are observable as reclassification.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderStore(orders ...*domain.Order) *fakeOrderStore {
	store := &fakeOrderStore{orders: map[string]*domain.Order{}}
	for _, order := range orders {
		store.orders[order.OrderID] = order
	}
	return store
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, creds simrs.Credentials, input simrs.CreateOrderInput) (string, error) {
	return "", nil
}

func (f *fakeOrderStore) AssignOrder(ctx context.Context, creds simrs.Credentials, input simrs.AssignOrderInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[input.OrderID]
	if !ok {
		return apperrors.NewUpstreamError("order tidak ditemukan", nil)
	}
	// Re-delegation overwrites the prior assignee.
	order.NamaTeknisi = input.NamaLengkap
	return nil
}

func (f *fakeOrderStore) CancelOrder(ctx context.Context, creds simrs.Credentials, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[orderID]; !ok {
		return apperrors.NewUpstreamError("order tidak ditemukan", nil)
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrderStore) EditOrder(ctx context.Context, creds simrs.Credentials, input simrs.EditOrderInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[input.OrderID]
	if !ok {
		return apperrors.NewUpstreamError("order tidak ditemukan", nil)
	}
	order.ExtPhone = input.ExtPhone
	order.LocationDesc = input.LocationDesc
	order.Catatan = input.Catatan
	order.ServiceCatalogID = input.ServiceCatalogID
	return nil
}

func (f *fakeOrderStore) VerifyOrder(ctx context.Context, creds simrs.Credentials, orderID, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return apperrors.NewUpstreamError("order tidak ditemukan", nil)
	}
	order.StatusCode = domain.OrderStatusVerified
	order.ResolutionNote = note
	return nil
}

func (f *fakeOrderStore) ListByStatus(ctx context.Context, creds simrs.Credentials, status domain.OrderStatusCode) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Order
	for _, order := range f.orders {
		if order.StatusCode == status {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeOrderStore) OrderDetail(ctx context.Context, creds simrs.Credentials, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, apperrors.NewUpstreamError("order tidak ditemukan", nil)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) SummaryCounts(ctx context.Context, creds simrs.Credentials) (domain.SummaryCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(domain.SummaryCounts, len(domain.OrderBuckets))
	for _, bucket := range domain.OrderBuckets {
		counts[bucket] = 0
	}
	for _, order := range f.orders {
		counts[order.StatusCode]++
	}
	return counts, nil
}

func (f *fakeOrderStore) AssignList(ctx context.Context, creds simrs.Credentials, orderID string) ([]domain.Technician, error) {
	return []domain.Technician{{TeknisiID: "42", NamaLengkap: "Budi Santoso", NamaBidang: "Jaringan"}}, nil
}

func newWorkflowService(store *fakeOrderStore) *WorkflowService {
	return NewWorkflowService(WorkflowDependencies{
		Client:     store,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
}

func TestVerifyMovesOrderBetweenBuckets(t *testing.T) {
	store := newFakeOrderStore(&domain.Order{OrderID: "ORD-1", StatusCode: domain.OrderStatusDone})
	svc := newWorkflowService(store)
	ctx := context.Background()

	require.NoError(t, svc.Verify(ctx, testCreds(), "ORD-1", "resolved, user confirmed"))

	done, err := svc.ListBucket(ctx, testCreds(), domain.OrderStatusDone)
	require.NoError(t, err)
	assert.Empty(t, done)

	verified, err := svc.ListBucket(ctx, testCreds(), domain.OrderStatusVerified)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, "ORD-1", verified[0].OrderID)
	assert.Equal(t, "resolved, user confirmed", verified[0].ResolutionNote)
}

func TestVerifyRequiresNote(t *testing.T) {
	store := newFakeOrderStore(&domain.Order{OrderID: "ORD-1", StatusCode: domain.OrderStatusDone})
	svc := newWorkflowService(store)

	err := svc.Verify(context.Background(), testCreds(), "ORD-1", "   ")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	// Untouched.
	order, err := svc.OrderDetail(context.Background(), testCreds(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDone, order.StatusCode)
}

func TestCancelRemovesOrder(t *testing.T) {
	store := newFakeOrderStore(&domain.Order{OrderID: "ORD-1", StatusCode: domain.OrderStatusOpen})
	svc := newWorkflowService(store)
	ctx := context.Background()

	require.NoError(t, svc.Cancel(ctx, testCreds(), "ORD-1"))
	open, err := svc.ListBucket(ctx, testCreds(), domain.OrderStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestEditDoesNotChangeStatus(t *testing.T) {
	store := newFakeOrderStore(&domain.Order{OrderID: "ORD-1", StatusCode: domain.OrderStatusFollowUp, ExtPhone: "100"})
	svc := newWorkflowService(store)

	err := svc.Edit(context.Background(), testCreds(), simrs.EditOrderInput{
		OrderID:          "ORD-1",
		ExtPhone:         "200",
		ServiceCatalogID: "12",
		LocationDesc:     "IGD",
		Catatan:          "updated",
	})
	require.NoError(t, err)

	order, err := svc.OrderDetail(context.Background(), testCreds(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "200", order.ExtPhone)
	assert.Equal(t, domain.OrderStatusFollowUp, order.StatusCode)
}

func TestDelegateOverwritesAssignee(t *testing.T) {
	store := newFakeOrderStore(&domain.Order{OrderID: "ORD-1", StatusCode: domain.OrderStatusOpen, NamaTeknisi: "Budi Santoso"})
	svc := newWorkflowService(store)

	require.NoError(t, svc.Delegate(context.Background(), testCreds(), "ORD-1", "43", "Sari Wulandari"))

	order, err := svc.OrderDetail(context.Background(), testCreds(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "Sari Wulandari", order.NamaTeknisi)
}

func TestListBucketRejectsUnknownStatus(t *testing.T) {
	svc := newWorkflowService(newFakeOrderStore())

	_, err := svc.ListBucket(context.Background(), testCreds(), domain.OrderStatusCode(99))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestSummaryCountsBuckets(t *testing.T) {
	store := newFakeOrderStore(
		&domain.Order{OrderID: "ORD-1", StatusCode: domain.OrderStatusOpen},
		&domain.Order{OrderID: "ORD-2", StatusCode: domain.OrderStatusOpen},
		&domain.Order{OrderID: "ORD-3", StatusCode: domain.OrderStatusVerified},
	)
	svc := newWorkflowService(store)

	counts, err := svc.Summary(context.Background(), testCreds())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.OrderStatusOpen])
	assert.Equal(t, 1, counts[domain.OrderStatusVerified])
	assert.Equal(t, 0, counts[domain.OrderStatusPending])
}
