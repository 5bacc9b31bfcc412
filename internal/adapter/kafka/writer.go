// Package kafka publishes validated fire polygons to a Kafka topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emberwatch/hotspot-etl-service/internal/config"
	"github.com/emberwatch/hotspot-etl-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces fire polygon records to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Persist serializes and publishes the polygons to the sink topic in a
// single WriteMessages call for efficiency.
func (w *Writer) Persist(ctx context.Context, polygons []domain.FirePolygon) error {
	if len(polygons) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(polygons))
	for i := range polygons {
		msg, err := serializeToMessage(polygons[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a FirePolygon into a Kafka message. The record
// ID key keeps all revisions of one polygon in one partition.
func serializeToMessage(p domain.FirePolygon) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize fire polygon: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "products", Value: []byte(strings.Join(p.Products, ","))},
			{Key: "ingested_at", Value: []byte(p.IngestedAt.Format(time.RFC3339))},
		},
	}, nil
}
