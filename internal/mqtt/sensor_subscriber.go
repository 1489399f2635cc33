package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"
	"github.com/JerraForge/hydroponic-backend/internal/metrics"
	"github.com/JerraForge/hydroponic-backend/internal/models"
	"github.com/JerraForge/hydroponic-backend/internal/service"

	mqttcommon "github.com/JerraForge/hydroponic-backend/common/mqtt"

	"go.uber.org/zap"
)

const ingestTimeout = 10 * time.Second

// subscriber the part of common/mqtt.Client used here.
type subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// SensorSubscriber feeds sensor readings published on
// hydroponic/{user_id}/{system_id}/measurements into the ingestor.
// The broker ACL is what binds {user_id} to the publishing device.
type SensorSubscriber struct {
	client   subscriber
	topic    string
	qos      byte
	ingestor service.MeasurementIngestor
	logger   *zap.Logger
}

func NewSensorSubscriber(client subscriber, topic string, qos byte, ingestor service.MeasurementIngestor, logger *zap.Logger) *SensorSubscriber {
	return &SensorSubscriber{
		client:   client,
		topic:    topic,
		qos:      qos,
		ingestor: ingestor,
		logger:   logger,
	}
}

// Start subscribes and blocks until ctx is done.
func (s *SensorSubscriber) Start(ctx context.Context) error {
	if err := s.client.Subscribe(s.topic, s.qos, s.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}

	s.logger.Info("MQTT sensor subscriber started", zap.String("topic", s.topic))

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the sensor topic.
func (s *SensorSubscriber) Stop() error {
	if err := s.client.Unsubscribe(s.topic); err != nil {
		s.logger.Error("Failed to unsubscribe", zap.String("topic", s.topic), zap.Error(err))
		return err
	}
	s.logger.Info("MQTT sensor subscriber stopped")
	return nil
}

// HandleMessage ingests one sensor message. Rejected messages are returned as
// errors; the MQTT client logs and drops them.
func (s *SensorSubscriber) HandleMessage(topic string, payload []byte) error {
	s.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	identity, systemID, err := ParseSensorTopic(topic)
	if err != nil {
		return err
	}

	readings, err := models.ParseReadingsPayload(payload)
	if err != nil {
		return fmt.Errorf("invalid sensor payload on %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	resp, err := s.ingestor.Ingest(ctx, service.IngestRequest{
		Identity: identity,
		SystemID: systemID,
		Readings: readings,
		Source:   metrics.SourceMQTT,
	})
	if err != nil {
		return fmt.Errorf("ingest from %s rejected: %w", topic, err)
	}

	s.logger.Info("Ingested sensor readings",
		zap.String("system_id", systemID),
		zap.Int("count", len(resp.Measurements)),
	)
	return nil
}

// ParseSensorTopic splits hydroponic/{user_id}/{system_id}/measurements.
func ParseSensorTopic(topic string) (domain.Identity, string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "hydroponic" || parts[3] != "measurements" {
		return "", "", fmt.Errorf("invalid topic format: %s", topic)
	}
	user, systemID := strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if user == "" || systemID == "" {
		return "", "", fmt.Errorf("invalid topic format: %s", topic)
	}
	return domain.Identity(user), systemID, nil
}
