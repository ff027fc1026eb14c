package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/route-risk-service/internal/domain"
)

// Writer produces route assessments to a Kafka topic.
// It implements publisher.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the assessment topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the assessments in a single WriteMessages call. Messages
// are keyed by route ID so every assessment of a route lands on one partition.
func (w *Writer) LoadBatch(ctx context.Context, assessments []domain.RouteAssessment) error {
	if len(assessments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessments))
	for i := range assessments {
		msg, err := serializeToMessage(assessments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d assessments to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("assessments written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RouteAssessment into a Kafka message.
func serializeToMessage(a domain.RouteAssessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize route assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.Route.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_tier", Value: []byte(a.Risk.Tier)},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}

// decodeMessage parses a message produced by Writer back into an assessment.
func decodeMessage(msg kafkago.Message) (domain.RouteAssessment, error) {
	var a domain.RouteAssessment
	if err := json.Unmarshal(msg.Value, &a); err != nil {
		return a, fmt.Errorf("decode route assessment at offset %d: %w", msg.Offset, err)
	}
	return a, nil
}
