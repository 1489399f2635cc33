package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/metrics"
	"github.com/JerraForge/hydroponic-backend/internal/repository"
	"github.com/JerraForge/hydroponic-backend/internal/service"

	mqttcommon "github.com/JerraForge/hydroponic-backend/common/mqtt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	topic        string
	qos          byte
	handler      mqttcommon.MessageHandler
	unsubscribed []string
	ready        chan struct{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error {
	c.topic, c.qos, c.handler = topic, qos, handler
	if c.ready != nil {
		close(c.ready)
	}
	return nil
}

func (c *fakeClient) Unsubscribe(topics ...string) error {
	c.unsubscribed = append(c.unsubscribed, topics...)
	return nil
}

type recordingIngestor struct {
	reqs []service.IngestRequest
	err  error
}

func (r *recordingIngestor) Ingest(_ context.Context, req service.IngestRequest) (*service.IngestResponse, error) {
	r.reqs = append(r.reqs, req)
	if r.err != nil {
		return nil, r.err
	}
	return &service.IngestResponse{Measurements: make([]*domain.Measurement, len(req.Readings))}, nil
}

func TestParseSensorTopic(t *testing.T) {
	id, sys, err := ParseSensorTopic("hydroponic/alice/6f1c2b7e/measurements")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("alice"), id)
	assert.Equal(t, "6f1c2b7e", sys)

	for _, bad := range []string{
		"hydroponic/alice/measurements",
		"hydroponic//sys/measurements",
		"hydroponic/alice/sys/readings",
		"radar/alice/sys/measurements",
		"hydroponic/alice/sys/measurements/extra",
	} {
		_, _, err := ParseSensorTopic(bad)
		assert.Error(t, err, bad)
	}
}

func TestSensorSubscriber_HandleMessage(t *testing.T) {
	ing := &recordingIngestor{}
	sub := NewSensorSubscriber(&fakeClient{}, "hydroponic/+/+/measurements", 1, ing, zap.NewNop())

	err := sub.HandleMessage("hydroponic/alice/sys-1/measurements",
		[]byte(`[{"ph":6.4,"temperature":21,"tds":700},{"ph":6.5,"temperature":21.1,"tds":705}]`))
	require.NoError(t, err)

	require.Len(t, ing.reqs, 1)
	req := ing.reqs[0]
	assert.Equal(t, domain.Identity("alice"), req.Identity)
	assert.Equal(t, "sys-1", req.SystemID)
	assert.Equal(t, metrics.SourceMQTT, req.Source)
	assert.Len(t, req.Readings, 2)
}

func TestSensorSubscriber_RejectsBadInput(t *testing.T) {
	ing := &recordingIngestor{}
	sub := NewSensorSubscriber(&fakeClient{}, "t", 0, ing, zap.NewNop())

	assert.Error(t, sub.HandleMessage("hydroponic/alice/measurements", []byte(`{"ph":7,"temperature":20,"tds":1}`)))
	assert.Error(t, sub.HandleMessage("hydroponic/alice/sys-1/measurements", []byte(`{"ph":7}`)))
	assert.Empty(t, ing.reqs)
}

func TestSensorSubscriber_ForeignSystemDropped(t *testing.T) {
	store := repository.NewMemoryStore()
	sys := &domain.System{Name: "Greenhouse A", OwnerID: "alice"}
	require.NoError(t, store.CreateSystem(context.Background(), sys))

	guard := service.NewAccessGuard(store)
	ing := service.NewMeasurementIngestor(guard, store, nil, zap.NewNop())
	sub := NewSensorSubscriber(&fakeClient{}, "t", 0, ing, zap.NewNop())

	err := sub.HandleMessage("hydroponic/mallory/"+sys.SystemID+"/measurements", []byte(`{"ph":7,"temperature":20,"tds":1}`))
	assert.ErrorIs(t, err, service.ErrNotFound)

	n, err := store.QueryMeasurements(repository.MeasurementQuery{SystemID: sys.SystemID}).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, sub.HandleMessage("hydroponic/alice/"+sys.SystemID+"/measurements", []byte(`{"ph":7,"temperature":20,"tds":1}`)))
	n, err = store.QueryMeasurements(repository.MeasurementQuery{SystemID: sys.SystemID}).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSensorSubscriber_StartStop(t *testing.T) {
	client := &fakeClient{ready: make(chan struct{})}
	sub := NewSensorSubscriber(client, "hydroponic/+/+/measurements", 1, &recordingIngestor{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Start(ctx) }()

	select {
	case <-client.ready:
	case <-time.After(time.Second):
		t.Fatal("subscriber never subscribed")
	}
	cancel()
	require.NoError(t, <-done)

	require.NoError(t, sub.Stop())
	assert.Equal(t, "hydroponic/+/+/measurements", client.topic)
	assert.Equal(t, byte(1), client.qos)
	assert.Equal(t, []string{"hydroponic/+/+/measurements"}, client.unsubscribed)
}
