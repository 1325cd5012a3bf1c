package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

const (
	// ReviewStreamName is the JetStream stream for review events
	ReviewStreamName = "REVIEWS"

	// ReviewStreamSubjects defines the subjects the review stream listens to
	ReviewStreamSubjects = "reviews.events"

	// OrderStreamName is the JetStream stream for order lifecycle events
	OrderStreamName = "ORDERS"

	// OrderStreamSubjects defines the subjects the order stream listens to
	OrderStreamSubjects = "orders.events"

	// ConsumerName is the durable consumer for the rating worker
	ConsumerName = "rating-worker"

	// MaxDeliveryAttempts is the max number of delivery attempts before discarding
	// After 3 failed attempts, message is discarded - next review event will recalculate
	MaxDeliveryAttempts = 3

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second
)

// StreamConfig holds the JetStream stream configuration
type StreamConfig struct {
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// generateExponentialBackoff creates a backoff schedule for NATS redeliveries
// Pattern: 1s, 2s, 4s, 8s, ... (2^n seconds)
// MaxDeliver N requires N-1 backoff durations (first delivery is immediate)
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// EnsureReviewStream creates or updates the JetStream stream for review events.
// Work-queue retention: messages are deleted once acked or after max deliveries.
func (s *StreamConfig) EnsureReviewStream() error {
	return s.ensureStream(&nats.StreamConfig{
		Name:        ReviewStreamName,
		Subjects:    []string{ReviewStreamSubjects},
		Retention:   nats.WorkQueuePolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      24 * time.Hour, // Stale events are not useful for recalculation
		Discard:     nats.DiscardOld,
		Description: "Review events stream for rating calculation",
	})
}

// EnsureOrderStream creates or updates the JetStream stream for order events.
// Interest retention so every subscriber (notifier, future fulfilment services)
// gets its own copy.
func (s *StreamConfig) EnsureOrderStream() error {
	return s.ensureStream(&nats.StreamConfig{
		Name:        OrderStreamName,
		Subjects:    []string{OrderStreamSubjects},
		Retention:   nats.LimitsPolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      7 * 24 * time.Hour,
		Discard:     nats.DiscardOld,
		Description: "Order lifecycle events stream",
	})
}

func (s *StreamConfig) ensureStream(cfg *nats.StreamConfig) error {
	stream, err := s.js.StreamInfo(cfg.Name)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   cfg.Name,
			"subjects": cfg.Subjects,
		}).Info("Creating JetStream stream")

		if _, err = s.js.AddStream(cfg); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}

		s.logger.Info("JetStream stream created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates or updates the durable consumer for the rating worker
// Consumer configuration:
// - Durable: Survives worker restarts
// - AckExplicit: Worker must explicitly acknowledge messages
// - MaxDeliver: 3 attempts then discard (next review event will recalculate)
// - AckWait: 30 seconds to process and ack
// - BackOff: Exponential backoff between retries (dynamically generated)
//
// Note: Messages that fail after 3 attempts are discarded, not sent to DLQ.
// This is acceptable because rating calculation is idempotent and based on
// database state - the next review event will trigger a full recalculation.
func (s *StreamConfig) EnsureConsumer() error {
	consumerInfo, err := s.js.ConsumerInfo(ReviewStreamName, ConsumerName)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   ReviewStreamName,
			"consumer": ConsumerName,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(ReviewStreamName, &nats.ConsumerConfig{
			Durable:       ConsumerName,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       AckWait,
			MaxDeliver:    MaxDeliveryAttempts,
			FilterSubject: ReviewStreamSubjects,
			BackOff:       generateExponentialBackoff(MaxDeliveryAttempts),
			Description:   "Rating worker consumer for processing review events",
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		s.logger.Info("JetStream consumer created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
