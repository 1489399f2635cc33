package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	httpapi "github.com/JerraForge/hydroponic-backend/internal/http"
	"github.com/JerraForge/hydroponic-backend/internal/repository"
	"github.com/JerraForge/hydroponic-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	guard := service.NewAccessGuard(store)

	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterSystemRoutes(
		httpapi.NewSystemsHandler(service.NewSystemService(store, guard, logger), logger),
		httpapi.NewMeasurementsHandler(
			service.NewMeasurementService(guard, store, service.MeasurementServiceConfig{}, logger),
			service.NewMeasurementIngestor(guard, store, nil, logger),
			logger,
		),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	alice := New(srv.URL, "alice", Options{}, zap.NewNop())

	created, err := alice.CreateSystem(ctx, "Tower", "Balcony")
	require.NoError(t, err)
	assert.Equal(t, "Tower", created.Name)
	require.NotNil(t, created.Location)
	assert.Equal(t, "Balcony", *created.Location)

	ingested, err := alice.IngestReadings(ctx, created.ID, []domain.Readings{
		{PH: 6.2, Temperature: 21, TDS: 700},
		{PH: 6.8, Temperature: 22, TDS: 760},
	})
	require.NoError(t, err)
	require.Len(t, ingested, 2)
	assert.Equal(t, ingested[0].Timestamp, ingested[1].Timestamp)

	page, err := alice.QueryMeasurements(ctx, created.ID, url.Values{"filter_type": {"ph"}, "min_value": {"6.5"}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 6.8, page.Items[0].PH)
	assert.Equal(t, "6.5", page.Filters["min_value"])

	systems, err := alice.ListSystems(ctx)
	require.NoError(t, err)
	require.Len(t, systems, 1)

	data, err := alice.ExportMeasurements(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	require.NoError(t, alice.DeleteSystem(ctx, created.ID))
	_, err = alice.GetSystem(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestClient_ForeignSystem(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	created, err := New(srv.URL, "alice", Options{}, zap.NewNop()).CreateSystem(ctx, "Tower", "")
	require.NoError(t, err)
	assert.Nil(t, created.Location)

	bob := New(srv.URL, "bob", Options{}, zap.NewNop())
	_, err = bob.QueryMeasurements(ctx, created.ID, nil)
	assert.True(t, IsNotFound(err))

	_, err = bob.IngestReadings(ctx, created.ID, []domain.Readings{{PH: 7, Temperature: 20, TDS: 1}})
	assert.True(t, IsNotFound(err))

	_, err = bob.ExportMeasurements(ctx, created.ID, nil)
	assert.True(t, IsNotFound(err))
}

func TestClient_ValidationError(t *testing.T) {
	srv := newTestServer(t)

	_, err := New(srv.URL, "alice", Options{}, zap.NewNop()).CreateSystem(context.Background(), "  ", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "name")
}

func TestClient_MissingIdentity(t *testing.T) {
	srv := newTestServer(t)

	_, err := New(srv.URL, "", Options{}, zap.NewNop()).ListSystems(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_ServerErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, "alice", Options{}, zap.NewNop()).ListSystems(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func stallingServer(t *testing.T, method string, hits *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
			return
		}
		if hits.Add(1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_IngestNotRetriedAfterTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := stallingServer(t, http.MethodPost, &hits, `{"code":2000,"type":"success","result":{"measurements":[]}}`)

	c := New(srv.URL, "alice", Options{Timeout: 100 * time.Millisecond, RetryCount: 2}, zap.NewNop())
	_, err := c.IngestReadings(context.Background(), "sys-1", []domain.Readings{{PH: 6.5, Temperature: 21, TDS: 700}})

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_CreateSystemNotRetriedAfterTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := stallingServer(t, http.MethodPost, &hits, `{"code":2000,"type":"success","result":{"id":"sys-1","name":"Tower"}}`)

	c := New(srv.URL, "alice", Options{Timeout: 100 * time.Millisecond, RetryCount: 2}, zap.NewNop())
	_, err := c.CreateSystem(context.Background(), "Tower", "")

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_ListSystemsRetriedAfterTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := stallingServer(t, http.MethodGet, &hits, `{"code":2000,"type":"success","result":{"items":[{"id":"sys-1","name":"Tower"}]}}`)

	c := New(srv.URL, "alice", Options{Timeout: 100 * time.Millisecond, RetryCount: 2}, zap.NewNop())
	systems, err := c.ListSystems(context.Background())

	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "Tower", systems[0].Name)
	assert.Equal(t, int32(2), hits.Load())
}
