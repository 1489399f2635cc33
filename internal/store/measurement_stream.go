package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"

	rediscommon "github.com/JerraForge/hydroponic-backend/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventMeasurementCreated event type written to the measurement stream.
const EventMeasurementCreated = "measurement.created"

// MeasurementCreatedEvent stream payload (JSON in the "data" field).
type MeasurementCreatedEvent struct {
	Event        string           `json:"event"`
	SystemID     string           `json:"system_id"`
	OwnerID      string           `json:"owner_id"`
	Measurements []map[string]any `json:"measurements"`
	PublishedAt  int64            `json:"published_at"`
}

// RedisMeasurementStream publishes measurement.created events to a Redis stream.
type RedisMeasurementStream struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

func NewRedisMeasurementStream(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *RedisMeasurementStream {
	return &RedisMeasurementStream{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

// PublishMeasurementsCreated writes one event for the whole batch.
func (s *RedisMeasurementStream) PublishMeasurementsCreated(ctx context.Context, system *domain.System, measurements []*domain.Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	items := make([]map[string]any, 0, len(measurements))
	for _, m := range measurements {
		items = append(items, m.ToJSON())
	}
	event := MeasurementCreatedEvent{
		Event:        EventMeasurementCreated,
		SystemID:     system.SystemID,
		OwnerID:      string(system.OwnerID),
		Measurements: items,
		PublishedAt:  time.Now().Unix(),
	}

	streamID, err := rediscommon.PublishJSONToStream(ctx, s.client, s.stream, event, s.maxLen)
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", s.stream, err)
	}

	s.logger.Debug("Published measurement.created",
		zap.String("system_id", system.SystemID),
		zap.String("stream", s.stream),
		zap.String("stream_id", streamID),
		zap.Int("count", len(measurements)),
	)
	return nil
}
