// Package ingest bridges MQTT-published reading documents into the store.
// Classroom devices that cannot speak HTTP publish readings to a topic; the
// bridge inserts them through the same validated path as the API, attributed
// to a configured provider account, and acknowledges stored readings on the
// ack topic so devices can confirm delivery.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/classense/attention-core/internal/auth"
	"github.com/classense/attention-core/internal/infrastructure/config"
	"github.com/classense/attention-core/internal/infrastructure/logging"
	"github.com/classense/attention-core/internal/infrastructure/mqtt"
	"github.com/classense/attention-core/internal/reading"
)

// Broker is the MQTT surface the bridge needs. *mqtt.Client satisfies it.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// Service subscribes to the reading topic and stores incoming documents.
type Service struct {
	client   Broker
	readings *reading.Service
	users    auth.UserRepository
	cfg      config.MQTTConfig
	logger   *logging.Logger

	ownerID string
}

// New creates the ingest bridge. Call Start to resolve the owner account and
// subscribe.
func New(client Broker, readings *reading.Service, users auth.UserRepository, cfg config.MQTTConfig, logger *logging.Logger) *Service {
	return &Service{
		client:   client,
		readings: readings,
		users:    users,
		cfg:      cfg,
		logger:   logger.With("component", "ingest"),
	}
}

// Start resolves the configured owner username, subscribes to the reading
// topic and publishes the retained online status. The owner must exist;
// readings are rejected otherwise, so failing fast here beats silently
// dropping every message later.
func (s *Service) Start(ctx context.Context) error {
	owner, err := s.users.GetByUsername(ctx, s.cfg.Ingest.Owner)
	if err != nil {
		return fmt.Errorf("resolving ingest owner %q: %w", s.cfg.Ingest.Owner, err)
	}
	s.ownerID = owner.ID

	topic := s.topic()
	if err := s.client.Subscribe(topic, byte(s.cfg.QoS), s.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %q: %w", topic, err)
	}

	if err := s.client.PublishRetained(mqtt.Topics{}.IngestStatus(), statusPayload("online")); err != nil {
		s.logger.Warn("publishing ingest status", "error", err)
	}

	s.logger.Info("reading ingest started", "topic", topic, "owner", s.cfg.Ingest.Owner)
	return nil
}

// handleMessage stores one published reading and acknowledges it on the ack
// topic. Failures are logged and the message is dropped; devices republish
// readings on their own schedule and the unique index keeps replays
// idempotent.
func (s *Service) handleMessage(topic string, payload []byte) error {
	var rd reading.Reading
	if err := json.Unmarshal(payload, &rd); err != nil {
		s.logger.Warn("dropping unparseable reading", "topic", topic, "error", err)
		return nil
	}
	rd.Owner = s.ownerID

	ctx := context.Background()
	if err := s.readings.Create(ctx, &rd); err != nil {
		s.logger.Warn("dropping rejected reading", "topic", topic, "error", err)
		return nil
	}

	if err := s.client.Publish(mqtt.Topics{}.ReadingAck(), ackPayload(&rd), byte(s.cfg.QoS), false); err != nil {
		s.logger.Warn("publishing reading ack", "id", rd.ID, "error", err)
	}

	s.logger.Debug("reading ingested", "id", rd.ID, "course", rd.Course, "teacher", rd.Teacher)
	return nil
}

// Stop publishes the retained offline status and unsubscribes from the
// reading topic.
func (s *Service) Stop() {
	if err := s.client.PublishRetained(mqtt.Topics{}.IngestStatus(), statusPayload("offline")); err != nil {
		s.logger.Warn("publishing ingest status", "error", err)
	}
	if err := s.client.Unsubscribe(s.topic()); err != nil {
		s.logger.Warn("unsubscribing from reading topic", "error", err)
	}
}

func (s *Service) topic() string {
	if s.cfg.Ingest.Topic != "" {
		return s.cfg.Ingest.Topic
	}
	return mqtt.Topics{}.Readings()
}

// ackPayload builds the acknowledgement devices match against the reading
// they published.
func ackPayload(rd *reading.Reading) []byte {
	payload, _ := json.Marshal(map[string]string{
		"id":      rd.ID,
		"course":  rd.Course,
		"teacher": rd.Teacher,
	})
	return payload
}

// statusPayload builds the retained bridge status message.
func statusPayload(status string) []byte {
	return []byte(fmt.Sprintf(
		`{"status":"%s","timestamp":"%s"}`,
		status,
		time.Now().UTC().Format(time.RFC3339),
	))
}
