package simrs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eservicedesk/internal/config"
	"github.com/spec-kit/eservicedesk/internal/domain"
	apperrors "github.com/spec-kit/eservicedesk/pkg/util"
)

func testClient(t *testing.T, handler http.HandlerFunc) (Client, Credentials) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.SimrsConfig{RequestTimeoutSeconds: 5}, zap.NewNop())
	return client, Credentials{Username: "webmin", Password: "secret", BaseURL: server.URL}
}

func TestCreateOrderSuccess(t *testing.T) {
	var gotBody map[string]string
	var gotUser string
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/order/create", r.URL.Path)
		gotUser, _, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "ORD-77"}})
	})

	id, err := client.CreateOrder(context.Background(), creds, CreateOrderInput{
		Catatan:          "No dial tone",
		ExtPhone:         "123",
		LocationDesc:     "Poli Dalam",
		ServiceCatalogID: "11",
		LogbookID:        "lb-9",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-77", id)
	assert.Equal(t, "webmin", gotUser)
	assert.Equal(t, "No dial tone", gotBody["catatan"])
	assert.Equal(t, "11", gotBody["service_catalog_id"])
	assert.Equal(t, "lb-9", gotBody["logbook_id"])
}

func TestCreateOrderRemoteErrorSurfacedVerbatim(t *testing.T) {
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "service catalog tidak ditemukan"})
	})

	_, err := client.CreateOrder(context.Background(), creds, CreateOrderInput{Catatan: "x"})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
	assert.Equal(t, "service catalog tidak ditemukan", domainErr.Message)
}

func TestAssignOrderPayload(t *testing.T) {
	var gotBody map[string]string
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/order/assign", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	})

	err := client.AssignOrder(context.Background(), creds, AssignOrderInput{
		OrderID:        "ORD-1",
		TeknisiID:      "42",
		NamaLengkap:    "Budi Santoso",
		AssignTypeCode: "1",
		AssignDesc:     "NEW",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", gotBody["order_id"])
	assert.Equal(t, "1", gotBody["assign_type_code"])
	assert.Equal(t, "NEW", gotBody["assign_desc"])
}

func TestVerifyOrderSendsStatus30(t *testing.T) {
	var gotBody map[string]string
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	})

	require.NoError(t, client.VerifyOrder(context.Background(), creds, "ORD-9", "done and checked"))
	assert.Equal(t, "30", gotBody["status_code"])
	assert.Equal(t, "done and checked", gotBody["note"])
}

func TestListByStatus(t *testing.T) {
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "15", r.URL.Query().Get("status_code"))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"order_id": "ORD-1", "status_code": 15, "catatan": "printer mati", "detail": map[string]string{"reporter_name": "Sari"}},
			{"order_id": "ORD-2", "status_code": 15},
		}})
	})

	orders, err := client.ListByStatus(context.Background(), creds, domain.OrderStatusDone)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, domain.OrderStatusDone, orders[0].StatusCode)
	require.NotNil(t, orders[0].Detail)
	assert.Equal(t, "Sari", orders[0].Detail.ReporterName)
	assert.Nil(t, orders[1].Detail)
}

func TestSummaryCountsFillsMissingBuckets(t *testing.T) {
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]int{
			{"status_code": 10, "total": 4},
			{"status_code": 30, "total": 9},
		}})
	})

	counts, err := client.SummaryCounts(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[domain.OrderStatusOpen])
	assert.Equal(t, 9, counts[domain.OrderStatusVerified])
	assert.Equal(t, 0, counts[domain.OrderStatusRunning])
	assert.Len(t, counts, len(domain.OrderBuckets))
}

func TestMalformedResponse(t *testing.T) {
	client, creds := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	})

	_, err := client.SummaryCounts(context.Background(), creds)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
}
